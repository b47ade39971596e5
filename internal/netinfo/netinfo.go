package netinfo

import (
	"context"
	"io"
	"net"
	"net/http"
	"os/exec"
	"strings"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"

	"netwatch/internal/models"
)

const lookupTimeout = 2 * time.Second

// Resolver collects informational details about the active connection.
// Everything here is best effort: fields that cannot be determined are left
// empty and never fail the caller.
type Resolver struct {
	externalIPEndpoint string
	client             *http.Client
}

// NewResolver builds a resolver using the given "what is my IP" endpoint.
func NewResolver(externalIPEndpoint string) *Resolver {
	return &Resolver{
		externalIPEndpoint: externalIPEndpoint,
		client:             &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup gathers connection type, SSID, local IP and external IP.
func (r *Resolver) Lookup(ctx context.Context) models.ConnectionInfo {
	info := models.ConnectionInfo{Type: "Unknown"}

	if ssid := wifiSSID(ctx); ssid != "" {
		info.Type = "WiFi"
		info.SSID = ssid
	} else if hasActiveWiredInterface() {
		info.Type = "Ethernet"
	}

	info.LocalIP = localIP()
	info.ExternalIP = r.externalIP(ctx)
	return info
}

// wifiSSID asks the OS wireless tooling for the current network name.
func wifiSSID(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "iwgetid", "-r").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// hasActiveWiredInterface reports whether any non-loopback interface is up.
func hasActiveWiredInterface() bool {
	ifaces, err := gnet.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		up := false
		loopback := false
		for _, flag := range iface.Flags {
			switch flag {
			case "up":
				up = true
			case "loopback":
				loopback = true
			}
		}
		if up && !loopback && len(iface.Addrs) > 0 {
			return true
		}
	}
	return false
}

// localIP finds the address of the routing interface without sending data.
func localIP() string {
	conn, err := net.DialTimeout("udp", "8.8.8.8:80", lookupTimeout)
	if err != nil {
		return ""
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}

func (r *Resolver) externalIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.externalIPEndpoint, nil)
	if err != nil {
		return ""
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return ""
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return ""
	}
	return ip
}

// Describe renders the connection as a short human string, e.g.
// "WiFi - HomeNetwork".
func Describe(info models.ConnectionInfo) string {
	if info.SSID != "" {
		return info.Type + " - " + info.SSID
	}
	return info.Type
}
