// Package discovery announces the web interface over mDNS and finds other
// roster servers on the local network.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/monorkin/lab-roster/internal/version"
)

const (
	SERVICE_TYPE   = "_http._tcp"
	SERVICE_DOMAIN = "local."
	APP_TXT_RECORD = "app=lab-roster"
	BROWSE_TIMEOUT = 5 * time.Second
)

// Instance is a roster server found on the network.
type Instance struct {
	Name     string
	Hostname string
	Port     int
	Addrs    []string
	Version  string
}

// URL returns the address of the instance's web interface.
func (i Instance) URL() string {
	host := strings.TrimSuffix(i.Hostname, ".")
	if len(i.Addrs) > 0 {
		host = i.Addrs[0]
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(i.Port)) + "/"
}

// Advertise registers the web interface until ctx is cancelled.
func Advertise(ctx context.Context, logger *slog.Logger, instance string, port int) error {
	if port <= 0 {
		return fmt.Errorf("cannot advertise port %d", port)
	}

	txt := []string{APP_TXT_RECORD, "path=/", "version=" + version.GetVersion()}
	server, err := zeroconf.Register(instance, SERVICE_TYPE, SERVICE_DOMAIN, port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logger.Info("Advertising web interface", "instance", instance, "service", SERVICE_TYPE, "port", port)

	go func() {
		<-ctx.Done()
		logger.Debug("Withdrawing mDNS advertisement", "instance", instance)
		server.Shutdown()
	}()

	return nil
}

// Browse collects roster servers that answer within timeout.
func Browse(ctx context.Context, logger *slog.Logger, timeout time.Duration) ([]Instance, error) {
	if timeout <= 0 {
		timeout = BROWSE_TIMEOUT
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	browseErr := make(chan error, 1)
	go func() {
		browseErr <- resolver.Browse(ctx, SERVICE_TYPE, SERVICE_DOMAIN, entries)
	}()

	var instances []Instance
	seen := make(map[string]bool)

loop:
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				break loop
			}
			instance, ok := fromEntry(entry)
			if !ok || seen[instance.Name] {
				continue
			}
			seen[instance.Name] = true
			logger.Debug("Found roster server", "instance", instance.Name, "host", instance.Hostname, "port", instance.Port)
			instances = append(instances, instance)
		case <-ctx.Done():
			break loop
		}
	}

	if err := <-browseErr; err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return instances, fmt.Errorf("failed to browse for servers: %w", err)
	}

	return instances, nil
}

// fromEntry keeps only services that carry the roster's TXT record.
func fromEntry(entry *zeroconf.ServiceEntry) (Instance, bool) {
	if entry == nil {
		return Instance{}, false
	}

	instance := Instance{
		Name:     entry.Instance,
		Hostname: entry.HostName,
		Port:     entry.Port,
	}

	isRoster := false
	for _, record := range entry.Text {
		key, value, _ := strings.Cut(record, "=")
		switch key {
		case "app":
			isRoster = record == APP_TXT_RECORD
		case "version":
			instance.Version = value
		}
	}
	if !isRoster {
		return Instance{}, false
	}

	for _, ip := range entry.AddrIPv4 {
		instance.Addrs = append(instance.Addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		instance.Addrs = append(instance.Addrs, ip.String())
	}

	return instance, true
}

// PortFromAddr extracts the port of a listen address such as ":5000".
func PortFromAddr(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in listen address %q", addr)
	}
	return port, nil
}
