// Package mdns 提供基于 mDNS 的会话发现
//
// 发布端以 "<instance>._zeroeq_pub._tcp.local." 注册服务，
// TXT 记录携带 session=<会话> 与 id=<进程标识>；
// 订阅端周期性查询同一服务类型，新实例推送 PeerAdded，
// 超过 PeerTTL 未再出现的实例推送 PeerRemoved。
package mdns

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/mdns"
	"github.com/miekg/dns"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/util/logger"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("discovery.mdns")

// TXT 记录键
const (
	txtSession  = "session="
	txtIdentity = "id="
)

// 确保实现接口
var _ interfaces.Discovery = (*Discovery)(nil)

// Discovery mDNS 发现服务
type Discovery struct {
	cfg config.MDNSConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	regs   map[*registration]struct{}
}

// New 创建 mDNS 发现服务
func New(cfg config.MDNSConfig) *Discovery {
	def := config.DefaultDiscoveryConfig().MDNS
	if cfg.Domain == "" {
		cfg.Domain = def.Domain
	}
	if cfg.QueryInterval <= 0 {
		cfg.QueryInterval = def.QueryInterval
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = def.QueryTimeout
	}
	if cfg.PeerTTL <= 0 {
		cfg.PeerTTL = def.PeerTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Discovery{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		regs:   make(map[*registration]struct{}),
	}
}

// IsAvailable 存在可组播的网络接口且服务未关闭
func (d *Discovery) IsAvailable() bool {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	return !closed && hasMulticastInterface()
}

// ============================================================================
//                              公告
// ============================================================================

// Announce 注册 mDNS 服务实例
func (d *Discovery) Announce(_ context.Context, ann types.Announcement) (interfaces.Registration, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrAlreadyClosed
	}

	if _, err := serviceFQDN(ann.Service, d.cfg.Domain); err != nil {
		return nil, err
	}
	if _, ok := dns.IsDomainName(ann.Instance); !ok || ann.Instance == "" || strings.Contains(ann.Instance, ".") {
		return nil, &MDNSError{Op: "announce", Err: ErrInvalidName, Message: ann.Instance}
	}

	ips := d.announceIPs(ann.Host)
	if len(ips) == 0 {
		return nil, &MDNSError{Op: "announce", Err: ErrNoAddresses, Message: ann.Instance}
	}

	txt := []string{txtSession + ann.Session, txtIdentity + ann.Identity.String()}
	zone, err := mdns.NewMDNSService(ann.Instance, ann.Service, trimDot(d.cfg.Domain), "", ann.Port, ips, txt)
	if err != nil {
		return nil, &MDNSError{Op: "announce", Err: err, Message: "创建服务记录失败"}
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone, Iface: d.iface()})
	if err != nil {
		return nil, &MDNSError{Op: "announce", Err: err, Message: "启动 mDNS 服务器失败"}
	}

	reg := &registration{d: d, ann: ann, server: server}
	d.mu.Lock()
	d.regs[reg] = struct{}{}
	d.mu.Unlock()

	log.Info("mDNS 服务已公告",
		"service", ann.Service,
		"instance", ann.Instance,
		"session", ann.Session,
		"port", ann.Port)
	return reg, nil
}

// announceIPs 显式 IP 直接使用，否则取本机地址
func (d *Discovery) announceIPs(host string) []net.IP {
	if ip := net.ParseIP(host); ip != nil && !ip.IsUnspecified() {
		return []net.IP{ip}
	}
	return localIPs(d.cfg.Interface, d.cfg.DisableIPv6)
}

func (d *Discovery) iface() *net.Interface {
	if d.cfg.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(d.cfg.Interface)
	if err != nil {
		log.Warn("找不到指定接口", "interface", d.cfg.Interface, "err", err)
		return nil
	}
	return iface
}

// registration 一次 mDNS 公告
type registration struct {
	d      *Discovery
	ann    types.Announcement
	server *mdns.Server
	once   sync.Once
}

func (r *registration) Announcement() types.Announcement {
	return r.ann
}

func (r *registration) Close() error {
	var err error
	r.once.Do(func() {
		r.d.mu.Lock()
		delete(r.d.regs, r)
		r.d.mu.Unlock()
		err = r.server.Shutdown()
		log.Debug("mDNS 公告已撤销", "instance", r.ann.Instance)
	})
	return err
}

// ============================================================================
//                              浏览
// ============================================================================

// Browse 浏览服务实例，ctx 取消或服务关闭时事件流关闭
func (d *Discovery) Browse(ctx context.Context, service string) (<-chan types.PeerEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrAlreadyClosed
	}

	fqdn, err := serviceFQDN(service, d.cfg.Domain)
	if err != nil {
		return nil, err
	}

	b, err := newBrowser(d, service, "."+fqdn)
	if err != nil {
		return nil, err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		b.run(ctx)
	}()
	return b.out, nil
}

// seenInstance 已发现实例
type seenInstance struct {
	event    types.PeerEvent
	lastSeen time.Time
}

// browser 单个服务类型的浏览循环
type browser struct {
	d       *Discovery
	service string
	suffix  string
	out     chan types.PeerEvent

	seen    *lru.Cache[string, seenInstance]
	pending []types.PeerEvent
}

func newBrowser(d *Discovery, service, suffix string) (*browser, error) {
	b := &browser{
		d:       d,
		service: service,
		suffix:  suffix,
		out:     make(chan types.PeerEvent, 64),
	}
	// 过期与容量淘汰都经由回调产生移除事件
	cache, err := lru.NewWithEvict[string, seenInstance](d.cfg.CacheSize, func(_ string, v seenInstance) {
		ev := v.event
		ev.Kind = types.PeerRemoved
		b.pending = append(b.pending, ev)
	})
	if err != nil {
		return nil, err
	}
	b.seen = cache
	return b, nil
}

func (b *browser) run(ctx context.Context) {
	defer close(b.out)

	ticker := time.NewTicker(b.d.cfg.QueryInterval.Duration())
	defer ticker.Stop()

	for {
		b.query()
		b.expire(time.Now())
		if !b.flush(ctx) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-b.d.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// query 执行一次 mDNS 查询，读完全部条目后返回
func (b *browser) query() {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := &mdns.QueryParam{
		Service:             b.service,
		Domain:              trimDot(b.d.cfg.Domain),
		Timeout:             b.d.cfg.QueryTimeout.Duration(),
		Interface:           b.d.iface(),
		Entries:             entries,
		WantUnicastResponse: true,
		DisableIPv6:         b.d.cfg.DisableIPv6,
	}

	go func() {
		if err := mdns.Query(params); err != nil {
			log.Debug("mDNS 查询失败", "service", b.service, "err", err)
		}
		close(entries)
	}()

	now := time.Now()
	for entry := range entries {
		ev, ok := parseEntry(entry, b.suffix)
		if !ok {
			continue
		}
		old, found := b.seen.Get(ev.Instance)
		b.seen.Add(ev.Instance, seenInstance{event: ev, lastSeen: now})
		if !found || old.event.Addr() != ev.Addr() {
			log.Debug("mDNS 发现实例", "instance", ev.Instance, "addr", ev.Addr(), "new", !found)
			b.pending = append(b.pending, ev)
		}
	}
}

// expire 移除超过 PeerTTL 未出现的实例
func (b *browser) expire(now time.Time) {
	ttl := b.d.cfg.PeerTTL.Duration()
	for _, key := range b.seen.Keys() {
		v, ok := b.seen.Peek(key)
		if ok && now.Sub(v.lastSeen) > ttl {
			b.seen.Remove(key)
		}
	}
}

// flush 推送待发事件，ctx 结束时返回 false
func (b *browser) flush(ctx context.Context) bool {
	for len(b.pending) > 0 {
		ev := b.pending[0]
		b.pending = b.pending[1:]
		select {
		case b.out <- ev:
		case <-ctx.Done():
			return false
		case <-b.d.ctx.Done():
			return false
		}
	}
	b.pending = nil
	return true
}

// parseEntry 把 mDNS 条目转换为发现事件
func parseEntry(entry *mdns.ServiceEntry, suffix string) (types.PeerEvent, bool) {
	if entry == nil || entry.Port == 0 {
		return types.PeerEvent{}, false
	}
	name := entry.Name
	if len(name) <= len(suffix) || !strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		return types.PeerEvent{}, false
	}

	ev := types.PeerEvent{
		Kind:     types.PeerAdded,
		Instance: name[:len(name)-len(suffix)],
		Port:     entry.Port,
	}
	for _, field := range entry.InfoFields {
		switch {
		case strings.HasPrefix(field, txtSession):
			ev.Session = strings.TrimPrefix(field, txtSession)
		case strings.HasPrefix(field, txtIdentity):
			ev.Identity = types.Identity(strings.TrimPrefix(field, txtIdentity))
		}
	}
	if ev.Session == "" {
		return types.PeerEvent{}, false
	}

	switch {
	case entry.AddrV4 != nil:
		ev.Host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		ev.Host = entry.AddrV6.String()
	default:
		ev.Host = trimDot(entry.Host)
	}
	if ev.Host == "" {
		return types.PeerEvent{}, false
	}
	return ev, true
}

// ============================================================================
//                              生命周期
// ============================================================================

// Close 撤销所有公告并停止浏览
func (d *Discovery) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	regs := make([]*registration, 0, len(d.regs))
	for r := range d.regs {
		regs = append(regs, r)
	}
	d.mu.Unlock()

	for _, r := range regs {
		_ = r.Close()
	}
	d.cancel()
	d.wg.Wait()
	log.Info("mDNS 发现服务已关闭")
	return nil
}

// serviceFQDN 校验并返回完整服务名（如 "_zeroeq_pub._tcp.local."）
func serviceFQDN(service, domain string) (string, error) {
	if service == "" {
		return "", &MDNSError{Op: "service", Err: ErrInvalidName, Message: "empty service"}
	}
	fqdn := dns.Fqdn(trimDot(service) + "." + trimDot(domain))
	if _, ok := dns.IsDomainName(fqdn); !ok {
		return "", &MDNSError{Op: "service", Err: ErrInvalidName, Message: fqdn}
	}
	return fqdn, nil
}

func trimDot(s string) string {
	return strings.Trim(s, ".")
}
