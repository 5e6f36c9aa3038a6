package xutil

import (
	"fmt"
	"net"
	"strings"
)

// GetLocalIp 获取本机 IPv4，优先内网地址，其次公网地址
func GetLocalIp() (string, error) {
	return ExtractRealIP("")
}

// ExtractRealIP addr 为具体地址时直接解析返回（支持 host:port 与 [ipv6]），
// 为空或通配地址时从网卡中挑选
func ExtractRealIP(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr != "" && addr != "0.0.0.0" && addr != "[::]" && addr != "::" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		ip := net.ParseIP(strings.Trim(addr, "[]"))
		if ip == nil {
			return "", fmt.Errorf("ip addr [%s] is invalid", addr)
		}
		return ip.String(), nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces failed, err=[%v]", err)
	}

	var normal, loopback []net.IP
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		ips := ipv4s(addrs)
		if iface.Flags&net.FlagLoopback != 0 {
			loopback = append(loopback, ips...)
		} else {
			normal = append(normal, ips...)
		}
	}

	if ip, ok := pickIP(append(normal, loopback...)); ok {
		return ip, nil
	}
	return "", fmt.Errorf("no ip address found")
}

func ipv4s(addrs []net.Addr) []net.IP {
	res := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.To4() == nil || ip.IsUnspecified() || ip.IsMulticast() {
			continue
		}
		res = append(res, ip)
	}
	return res
}

// pickIP 第一个内网地址优先，没有则返回第一个公网地址
func pickIP(ips []net.IP) (string, bool) {
	public := ""
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return ip.String(), true
		}
		if public == "" {
			public = ip.String()
		}
	}
	return public, public != ""
}

func isPrivateIP(ip net.IP) bool {
	return ip != nil && (ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast())
}
