package builder

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/types"

	"github.com/mitchellh/mapstructure"
)

// Deps Builder 共享依赖，启动时注入，只读
type Deps struct {
	Reader  chain.Reader
	Catalog *catalog.Catalog
}

// Env 单次构建的上下文：被治理的钱包（authority）与付费账户（payer）
type Env struct {
	Authority types.Pubkey
	Payer     types.Pubkey
}

// Action 一个可构建的动作
type Action struct {
	ID          string
	Description string
	newForm     func() any
	build       func(ctx context.Context, deps *Deps, env *Env, form any) (*Result, error)
}

// NewAction 用强类型表单定义一个动作；表单字段使用 `form:"name"` 标签
func NewAction[F any](
	id, description string,
	fn func(ctx context.Context, deps *Deps, env *Env, form *F) (*Result, error),
) Action {
	return Action{
		ID:          id,
		Description: description,
		newForm:     func() any { return new(F) },
		build: func(ctx context.Context, deps *Deps, env *Env, form any) (*Result, error) {
			return fn(ctx, deps, env, form.(*F))
		},
	}
}

// FormFields 表单字段名（CLI 帮助信息用）
func (a Action) FormFields() []string {
	t := reflect.TypeOf(a.newForm()).Elem()
	out := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get("form"); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Set actionID -> Action 的只读集合
type Set struct {
	deps    *Deps
	actions map[string]Action
}

func NewSet(deps *Deps, actions ...Action) (*Set, error) {
	s := &Set{deps: deps, actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		if _, dup := s.actions[a.ID]; dup {
			return nil, fmt.Errorf("action %s registered twice", a.ID)
		}
		s.actions[a.ID] = a
	}
	return s, nil
}

// Actions 已注册的动作（按 id 排序）
func (s *Set) Actions() []Action {
	out := make([]Action, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Build 解码表单并调用对应 builder。表单错误、未知动作均返回 ErrInvalidParameter
func (s *Set) Build(ctx context.Context, actionID string, form map[string]any, env *Env) (*Result, error) {
	a, ok := s.actions[actionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ixerr.ErrInvalidParameter, actionID)
	}
	if env == nil || env.Authority.IsZero() {
		return nil, fmt.Errorf("%w: %s requires an authority", ixerr.ErrInvalidParameter, actionID)
	}
	e := *env
	if e.Payer.IsZero() {
		e.Payer = e.Authority
	}

	typed := a.newForm()
	if err := decodeForm(form, typed); err != nil {
		return nil, fmt.Errorf("%w: %s form: %v", ixerr.ErrInvalidParameter, actionID, err)
	}

	res, err := a.build(ctx, s.deps, &e, typed)
	if err != nil {
		logger.Warnf("[Builder:%s] 构建失败: authority=%s, err=%v", actionID, e.Authority, err)
		return nil, err
	}
	logger.Debugf("[Builder:%s] 构建完成: program=%s, accounts=%d, prereqs=%d, signers=%d",
		actionID, res.Instruction.ProgramID, len(res.Instruction.Accounts), len(res.Prerequisites), len(res.Signers))
	return res, nil
}

func decodeForm(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
