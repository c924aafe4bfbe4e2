package mdns

import (
	"net"
	"sort"
	"strings"
)

// virtualInterfacePrefixes 虚拟网卡名前缀（容器、虚拟机、VPN）
var virtualInterfacePrefixes = []string{
	"docker", "br-", "veth", "virbr", "vmnet", "vboxnet", "utun", "tun", "tap", "tailscale", "wg",
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// scoreIP 地址优先级，0 表示不适合公告
//
// IPv4 优先；私网地址中 192.168 > 10 > 172.16/12。
func scoreIP(ip net.IP) int {
	if ip == nil || ip.IsLoopback() || ip.IsUnspecified() || ip.IsMulticast() {
		return 0
	}
	base := 100
	ip4 := ip.To4()
	if ip4 != nil {
		base = 1000
	}
	switch {
	case ip4 != nil && ip4[0] == 192 && ip4[1] == 168:
		return base + 300
	case ip4 != nil && ip4[0] == 10:
		return base + 200
	case ip.IsPrivate():
		return base + 100
	case ip.IsLinkLocalUnicast():
		return base + 10
	default:
		return base
	}
}

// localIPs 返回适合公告的本机地址（按优先级排序）
func localIPs(ifaceName string, disableIPv6 bool) []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	type scored struct {
		ip    net.IP
		score int
	}
	var out []scored
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifaceName != "" && iface.Name != ifaceName {
			continue
		}
		if ifaceName == "" && isVirtualInterface(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if disableIPv6 && ipNet.IP.To4() == nil {
				continue
			}
			if s := scoreIP(ipNet.IP); s > 0 {
				out = append(out, scored{ip: ipNet.IP, score: s})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	ips := make([]net.IP, len(out))
	for i, s := range out {
		ips[i] = s.ip
	}
	return ips
}

// hasMulticastInterface 是否存在可用于组播的接口
func hasMulticastInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagMulticast != 0 {
			return true
		}
	}
	return false
}
