package health

import (
	"encoding/binary"
	"net"
	"time"
)

const (
	defaultNTPServer = "pool.ntp.org:123"

	ntpPacketSize = 48
	ntpVersion    = 3
	ntpModeClient = 3

	// Seconds between the NTP epoch (1900) and the Unix epoch (1970)
	ntpUnixDelta = 2208988800

	ntpTimeout = 2 * time.Second
)

// queryNTPOffset performs a single best-effort SNTP exchange and
// returns the clock offset in milliseconds, or nil on any failure.
// This is the fallback when no local time daemon can be queried.
func queryNTPOffset(server string) *float64 {
	conn, err := net.DialTimeout("udp", server, ntpTimeout)
	if err != nil {
		return nil
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(ntpTimeout)); err != nil {
		return nil
	}

	request := make([]byte, ntpPacketSize)
	request[0] = ntpVersion<<3 | ntpModeClient

	t1 := ntpTime(time.Now())
	if _, err := conn.Write(request); err != nil {
		return nil
	}

	response := make([]byte, ntpPacketSize)
	if _, err := conn.Read(response); err != nil {
		return nil
	}
	t4 := ntpTime(time.Now())

	// Receive (t2) and transmit (t3) timestamps from the server reply
	t2 := ntpTimestamp(response, 32)
	t3 := ntpTimestamp(response, 40)

	offset := ((t2 - t1) + (t3 - t4)) / 2

	ms := offset * 1000
	return &ms
}

// ntpTime converts a wall-clock time to seconds since the NTP epoch.
func ntpTime(t time.Time) float64 {
	return float64(t.UnixNano())/float64(time.Second) + ntpUnixDelta
}

// ntpTimestamp decodes a 64-bit NTP fixed-point timestamp at the given
// packet offset.
func ntpTimestamp(packet []byte, offset int) float64 {
	seconds := binary.BigEndian.Uint32(packet[offset:])
	fraction := binary.BigEndian.Uint32(packet[offset+4:])

	return float64(seconds) + float64(fraction)/(1<<32)
}
