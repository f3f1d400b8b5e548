package chamsys

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// Probe broadcasts one empty framed packet and collects the addresses of
// anything that answers with a framed packet before wait runs out. It is a
// best-effort helper for finding a desk and makes no retries.
func Probe(ctx context.Context, local netip.Addr, port uint16, wait time.Duration) ([]netip.Addr, error) {
	local = local.Unmap()
	if !local.IsValid() {
		local = netip.IPv4Unspecified()
	}
	if port == 0 {
		port = DefaultPort
	}

	conn, err := net.ListenUDP("udp4", net.UDPAddrFromAddrPort(netip.AddrPortFrom(local, 0)))
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %w", ErrSocketBind, local, err)
	}
	defer conn.Close()

	if err := setBroadcast(conn); err != nil {
		return nil, fmt.Errorf("enable broadcast: %w", err)
	}

	pkt, err := EncodeFramed("", 0, 0)
	if err != nil {
		return nil, err
	}
	target := netip.AddrPortFrom(broadcastFor(local), port)
	if _, err := conn.WriteToUDPAddrPort(pkt, target); err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrSocketSend, target, err)
	}

	deadline := time.Now().Add(wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	self := unmapped(conn.LocalAddr().(*net.UDPAddr).AddrPort())
	seen := make(map[netip.Addr]bool)
	var found []netip.Addr
	buf := make([]byte, 1500)
	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			break
		}
		from = unmapped(from)
		if from == self {
			continue
		}
		if _, _, err := DecodeFramed(buf[:n]); err != nil {
			continue
		}
		if !seen[from.Addr()] {
			seen[from.Addr()] = true
			found = append(found, from.Addr())
		}
	}
	return found, nil
}

// broadcastFor picks the directed broadcast address of the interface owning
// local, or of the first usable interface, falling back to 255.255.255.255.
func broadcastFor(local netip.Addr) netip.Addr {
	ifaces, err := net.Interfaces()
	if err != nil {
		return netip.AddrFrom4([4]byte{255, 255, 255, 255})
	}

	var first netip.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			prefix, ok := netipPrefix(ipnet)
			if !ok {
				continue
			}
			if local.IsValid() && !local.IsUnspecified() && prefix.Contains(local) {
				return directedBroadcast(prefix)
			}
			if !first.IsValid() {
				first = directedBroadcast(prefix)
			}
		}
	}
	if first.IsValid() {
		return first
	}
	return netip.AddrFrom4([4]byte{255, 255, 255, 255})
}

func netipPrefix(ipnet *net.IPNet) (netip.Prefix, bool) {
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return netip.Prefix{}, false
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(netip.AddrFrom4([4]byte(ip4)), ones), true
}

func directedBroadcast(p netip.Prefix) netip.Addr {
	ip := p.Addr().As4()
	bits := p.Bits()
	for i := 0; i < 4; i++ {
		// prefix bits left for this byte
		netBits := bits - i*8
		switch {
		case netBits <= 0:
			ip[i] = 0xFF
		case netBits < 8:
			ip[i] |= 0xFF >> netBits
		}
	}
	return netip.AddrFrom4(ip)
}
