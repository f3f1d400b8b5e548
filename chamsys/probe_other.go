//go:build !unix

package chamsys

import "net"

func setBroadcast(conn *net.UDPConn) error {
	return nil
}
