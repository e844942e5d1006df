package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortFromAddr(t *testing.T) {
	port, err := PortFromAddr(":5000")
	require.NoError(t, err)
	assert.Equal(t, 5000, port)

	port, err = PortFromAddr("127.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	for _, addr := range []string{"5000", ":http", ":0", "[::1]:70000"} {
		_, err := PortFromAddr(addr)
		assert.Error(t, err, addr)
	}
}

func TestFromEntry(t *testing.T) {
	entry := zeroconf.NewServiceEntry("Lab roster on bench-3", SERVICE_TYPE, SERVICE_DOMAIN)
	entry.HostName = "bench-3.local."
	entry.Port = 5000
	entry.Text = []string{APP_TXT_RECORD, "path=/", "version=1.2.0"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}

	instance, ok := fromEntry(entry)
	require.True(t, ok)
	assert.Equal(t, "Lab roster on bench-3", instance.Name)
	assert.Equal(t, "1.2.0", instance.Version)
	assert.Equal(t, "http://192.168.1.20:5000/", instance.URL())

	instance.Addrs = nil
	assert.Equal(t, "http://bench-3.local:5000/", instance.URL())
}

func TestFromEntryIgnoresOtherServices(t *testing.T) {
	printer := zeroconf.NewServiceEntry("Office printer", SERVICE_TYPE, SERVICE_DOMAIN)
	printer.Text = []string{"path=/"}

	_, ok := fromEntry(printer)
	assert.False(t, ok)

	_, ok = fromEntry(nil)
	assert.False(t, ok)
}
