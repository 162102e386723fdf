package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Pubkey = types.Pubkey

// MaplePool Maple Syrup 池子
type MaplePool struct {
	Pool       Pubkey `yaml:"pool"`
	Globals    Pubkey `yaml:"globals"`
	PoolLocker Pubkey `yaml:"pool_locker"` // 池子 base mint 储备账户
	SharesMint Pubkey `yaml:"shares_mint"`
	BaseMint   Pubkey `yaml:"base_mint"`
}

// LifinityPool Lifinity AMM 池子
type LifinityPool struct {
	Amm            Pubkey `yaml:"amm"`
	Authority      Pubkey `yaml:"authority"`
	PoolMint       Pubkey `yaml:"pool_mint"` // LP mint
	TokenA         Pubkey `yaml:"token_a"`   // 池子 Token A 储备账户
	TokenB         Pubkey `yaml:"token_b"`   // 池子 Token B 储备账户
	MintA          Pubkey `yaml:"mint_a"`
	MintB          Pubkey `yaml:"mint_b"`
	FeeAccount     Pubkey `yaml:"fee_account"`
	ConfigAccount  Pubkey `yaml:"config_account"`
	NftAccount     Pubkey `yaml:"nft_account"`
	NftMetaAccount Pubkey `yaml:"nft_meta_account"`
}

// RaydiumPool Raydium AMM V4 池子及其 Serum 市场
type RaydiumPool struct {
	ID               Pubkey `yaml:"id"`
	Authority        Pubkey `yaml:"authority"`
	OpenOrders       Pubkey `yaml:"open_orders"`
	TargetOrders     Pubkey `yaml:"target_orders"`
	LpMint           Pubkey `yaml:"lp_mint"`
	BaseMint         Pubkey `yaml:"base_mint"`
	QuoteMint        Pubkey `yaml:"quote_mint"`
	BaseVault        Pubkey `yaml:"base_vault"`
	QuoteVault       Pubkey `yaml:"quote_vault"`
	WithdrawQueue    Pubkey `yaml:"withdraw_queue"`
	LpVault          Pubkey `yaml:"lp_vault"`
	MarketProgram    Pubkey `yaml:"market_program"`
	Market           Pubkey `yaml:"market"`
	MarketBaseVault  Pubkey `yaml:"market_base_vault"`
	MarketQuoteVault Pubkey `yaml:"market_quote_vault"`
	MarketAuthority  Pubkey `yaml:"market_authority"`
	MarketEventQueue Pubkey `yaml:"market_event_queue"`
	MarketBids       Pubkey `yaml:"market_bids"`
	MarketAsks       Pubkey `yaml:"market_asks"`
}

// SolendReserve Solend 某个 reserve 的相关账户
type SolendReserve struct {
	Reserve          Pubkey `yaml:"reserve"`
	LiquidityMint    Pubkey `yaml:"liquidity_mint"`
	LiquiditySupply  Pubkey `yaml:"liquidity_supply"`
	CollateralMint   Pubkey `yaml:"collateral_mint"`
	CollateralSupply Pubkey `yaml:"collateral_supply"`
	PythOracle       Pubkey `yaml:"pyth_oracle"`
	SwitchboardFeed  Pubkey `yaml:"switchboard_feed"`
}

// SolendMarket Solend lending market
type SolendMarket struct {
	Address   Pubkey                   `yaml:"address"`
	Authority Pubkey                   `yaml:"authority"`
	Reserves  map[string]SolendReserve `yaml:"reserves"`
}

// ObligationSeed obligation 使用 create-with-seed 派生，seed 为市场地址 base58 的前 32 个字符
func (m *SolendMarket) ObligationSeed() string {
	s := m.Address.String()
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

// TribecaGovernor Tribeca 治理实例
type TribecaGovernor struct {
	Governor Pubkey `yaml:"governor"`
	Locker   Pubkey `yaml:"locker"`
}

// MercurialPool Mercurial 动态 AMM 池子；mint / vault 等信息从链上池子账户读取
type MercurialPool struct {
	Pool Pubkey `yaml:"pool"`
}

// UXDController UXD 部署。program 即 DAO 治理的 UXD 程序
type UXDController struct {
	Program        Pubkey `yaml:"program"`
	RedeemableMint Pubkey `yaml:"redeemable_mint"`
	QuoteMint      Pubkey `yaml:"quote_mint"`
}

// Catalog 池子 / 市场 / 治理实例目录，启动后只读
type Catalog struct {
	MaplePools       map[string]MaplePool       `yaml:"maple_pools"`
	LifinityPools    map[string]LifinityPool    `yaml:"lifinity_pools"`
	RaydiumPools     map[string]RaydiumPool     `yaml:"raydium_pools"`
	SolendMarkets    map[string]SolendMarket    `yaml:"solend_markets"`
	TribecaGovernors map[string]TribecaGovernor `yaml:"tribeca_governors"`
	MercurialPools   map[string]MercurialPool   `yaml:"mercurial_pools"`
	UXDControllers   map[string]UXDController   `yaml:"uxd_controllers"`
}

func New() *Catalog {
	return &Catalog{
		MaplePools:       map[string]MaplePool{},
		LifinityPools:    map[string]LifinityPool{},
		RaydiumPools:     map[string]RaydiumPool{},
		SolendMarkets:    map[string]SolendMarket{},
		TribecaGovernors: map[string]TribecaGovernor{},
		MercurialPools:   map[string]MercurialPool{},
		UXDControllers:   map[string]UXDController{},
	}
}

// Parse 解析 YAML 目录
func Parse(data []byte) (*Catalog, error) {
	c := New()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.fill()
	return c, nil
}

// Load 加载内置目录，并用 path 指定的文件覆盖同名条目；path 为空时只使用内置目录
func Load(path string) (*Catalog, error) {
	base, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, err
	}
	base.Merge(extra)
	return base, nil
}

// Merge 用 other 中的条目覆盖当前目录
func (c *Catalog) Merge(other *Catalog) {
	for k, v := range other.MaplePools {
		c.MaplePools[k] = v
	}
	for k, v := range other.LifinityPools {
		c.LifinityPools[k] = v
	}
	for k, v := range other.RaydiumPools {
		c.RaydiumPools[k] = v
	}
	for k, v := range other.SolendMarkets {
		c.SolendMarkets[k] = v
	}
	for k, v := range other.TribecaGovernors {
		c.TribecaGovernors[k] = v
	}
	for k, v := range other.MercurialPools {
		c.MercurialPools[k] = v
	}
	for k, v := range other.UXDControllers {
		c.UXDControllers[k] = v
	}
}

// yaml 中缺省的 map 保持非 nil
func (c *Catalog) fill() {
	if c.MaplePools == nil {
		c.MaplePools = map[string]MaplePool{}
	}
	if c.LifinityPools == nil {
		c.LifinityPools = map[string]LifinityPool{}
	}
	if c.RaydiumPools == nil {
		c.RaydiumPools = map[string]RaydiumPool{}
	}
	if c.SolendMarkets == nil {
		c.SolendMarkets = map[string]SolendMarket{}
	}
	if c.TribecaGovernors == nil {
		c.TribecaGovernors = map[string]TribecaGovernor{}
	}
	if c.MercurialPools == nil {
		c.MercurialPools = map[string]MercurialPool{}
	}
	if c.UXDControllers == nil {
		c.UXDControllers = map[string]UXDController{}
	}
}

func notFound(kind, name string) error {
	return fmt.Errorf("%w: %s %q is not in the catalog", ixerr.ErrDependencyNotFound, kind, name)
}

func (c *Catalog) MaplePool(name string) (*MaplePool, error) {
	p, ok := c.MaplePools[name]
	if !ok {
		return nil, notFound("maple pool", name)
	}
	return &p, nil
}

// MaplePoolByAddress 按池子地址反查（渲染用）
func (c *Catalog) MaplePoolByAddress(addr Pubkey) (string, *MaplePool, bool) {
	for name, p := range c.MaplePools {
		if p.Pool == addr {
			p := p
			return name, &p, true
		}
	}
	return "", nil, false
}

func (c *Catalog) LifinityPool(name string) (*LifinityPool, error) {
	p, ok := c.LifinityPools[name]
	if !ok {
		return nil, notFound("lifinity pool", name)
	}
	return &p, nil
}

// LifinityPoolByMint 按 LP mint 反查池子名称
func (c *Catalog) LifinityPoolByMint(mint Pubkey) (string, bool) {
	for name, p := range c.LifinityPools {
		if p.PoolMint == mint {
			return name, true
		}
	}
	return "", false
}

func (c *Catalog) RaydiumPool(name string) (*RaydiumPool, error) {
	p, ok := c.RaydiumPools[name]
	if !ok {
		return nil, notFound("raydium pool", name)
	}
	return &p, nil
}

func (c *Catalog) SolendMarket(name string) (*SolendMarket, error) {
	m, ok := c.SolendMarkets[name]
	if !ok {
		return nil, notFound("solend market", name)
	}
	return &m, nil
}

// SolendReserve 查找市场下的 reserve
func (c *Catalog) SolendReserve(market, token string) (*SolendMarket, *SolendReserve, error) {
	m, err := c.SolendMarket(market)
	if err != nil {
		return nil, nil, err
	}
	r, ok := m.Reserves[token]
	if !ok {
		return nil, nil, notFound("solend reserve", market+"/"+token)
	}
	return m, &r, nil
}

func (c *Catalog) TribecaGovernor(name string) (*TribecaGovernor, error) {
	g, ok := c.TribecaGovernors[name]
	if !ok {
		return nil, notFound("tribeca governor", name)
	}
	return &g, nil
}

func (c *Catalog) MercurialPool(name string) (*MercurialPool, error) {
	p, ok := c.MercurialPools[name]
	if !ok {
		return nil, notFound("mercurial pool", name)
	}
	return &p, nil
}

// MercurialPoolByAddress 按池子地址反查名称
func (c *Catalog) MercurialPoolByAddress(addr Pubkey) (string, bool) {
	for name, p := range c.MercurialPools {
		if p.Pool == addr {
			return name, true
		}
	}
	return "", false
}

func (c *Catalog) UXDController(name string) (*UXDController, error) {
	u, ok := c.UXDControllers[name]
	if !ok {
		return nil, notFound("uxd controller", name)
	}
	return &u, nil
}
