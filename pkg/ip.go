package pkg

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// LocalClient stands for every request coming from this machine or a private network,
// e.g. the docker bridge in development.
const LocalClient = "localhost"

// IPIsLocal reports whether the address, with or without a port, is loopback or private.
func IPIsLocal(addr string) bool {
	ip, err := parseAddr(addr)
	if err != nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

func parseAddr(addr string) (netip.Addr, error) {
	addr = strings.TrimSpace(addr)
	if addrPort, err := netip.ParseAddrPort(addr); err == nil {
		return addrPort.Addr().Unmap(), nil
	}
	ip, err := netip.ParseAddr(strings.Trim(addr, "[]"))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip addr [%s] is invalid", addr)
	}
	return ip.Unmap(), nil
}

// ReadUserIP returns the client IP, the proxy headers taking precedence over the remote address.
// Local clients all get LocalClient.
func ReadUserIP(r *http.Request) (string, error) {
	addr := r.Header.Get("X-Real-Ip")
	if addr == "" {
		// first one in the list is the client
		addr, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	}
	if strings.TrimSpace(addr) == "" {
		addr = r.RemoteAddr
	}

	ip, err := parseAddr(addr)
	if err != nil {
		return "", err
	}
	if ip.IsLoopback() || ip.IsPrivate() {
		return LocalClient, nil
	}
	return ip.String(), nil
}
