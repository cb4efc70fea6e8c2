// Package statsd emits list fetch metrics using the StatsD line protocol
// with DogStatsD-style tags.
package statsd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink is the metric surface used by the console.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

const (
	defaultPacketSize    = 1432
	defaultFlushInterval = time.Second
)

type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
	// DialTimeout bounds the initial UDP dial. Defaults to 5s.
	DialTimeout time.Duration
	// MaxPacketSize caps one datagram; lines are batched up to it.
	// Defaults to 1432 bytes.
	MaxPacketSize int
	// FlushInterval sends a partial batch. Defaults to 1s.
	FlushInterval time.Duration
}

// Client batches metric lines into UDP datagrams. A disabled or nil Client
// drops everything. Safe for concurrent use.
type Client struct {
	prefix  string
	tags    map[string]string
	logger  *slog.Logger
	maxSize int

	mu   sync.Mutex
	conn net.Conn
	buf  bytes.Buffer
	stop chan struct{}
	done chan struct{}
}

var _ Sink = (*Client)(nil)

// NewClient dials cfg.Address when metrics are enabled. A blank address
// yields a disabled client rather than an error.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{
		prefix:  strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		tags:    cleanTags(cfg.GlobalTags),
		logger:  cfg.Logger,
		maxSize: cfg.MaxPacketSize,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.maxSize <= 0 {
		c.maxSize = defaultPacketSize
	}

	addr := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || addr == "" {
		return c, nil
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}
	c.conn = conn

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	c.stop, c.done = make(chan struct{}), make(chan struct{})
	go c.flushLoop(interval)
	return c, nil
}

func (c *Client) flushLoop(interval time.Duration) {
	defer close(c.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Flush()
		}
	}
}

// Enabled reports whether the client has a live connection.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.add(name, strconv.FormatInt(value, 10), "c", tags)
}

func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.add(name, strconv.FormatFloat(value, 'f', -1, 64), "g", tags)
}

// Timing records value in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.add(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Flush sends any batched lines now.
func (c *Client) Flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

// Close flushes, stops the flush loop and releases the socket. Calling it
// again is a no-op.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.flushLocked()
	err := c.conn.Close()
	c.conn = nil
	stop, done := c.stop, c.done
	c.stop = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return err
}

func (c *Client) add(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	metric := metricName(c.prefix, name)
	if metric == "" {
		return
	}
	line := metric + ":" + value + "|" + kind + encodeTags(c.tags, tags)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if c.buf.Len() > 0 && c.buf.Len()+1+len(line) > c.maxSize {
		c.flushLocked()
	}
	if c.buf.Len() > 0 {
		c.buf.WriteByte('\n')
	}
	c.buf.WriteString(line)
	if c.buf.Len() >= c.maxSize {
		c.flushLocked()
	}
}

func (c *Client) flushLocked() {
	if c.conn == nil || c.buf.Len() == 0 {
		return
	}
	if _, err := c.conn.Write(c.buf.Bytes()); err != nil {
		c.logger.Debug("statsd write failed", "bytes", c.buf.Len(), "error", err)
	}
	c.buf.Reset()
}

// metricName joins prefix and name, replacing characters StatsD agents
// reject and collapsing empty path segments.
func metricName(prefix, name string) string {
	n := strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_").Replace(strings.TrimSpace(name))
	n = strings.Join(strings.FieldsFunc(n, func(r rune) bool { return r == '.' }), ".")
	switch {
	case n == "":
		return ""
	case prefix == "":
		return n
	}
	return prefix + "." + n
}

// encodeTags merges global and local tags, local winning, and renders them
// sorted by key as "|#k:v,k:v".
func encodeTags(global, local map[string]string) string {
	merged := cleanTags(global)
	maps.Copy(merged, cleanTags(local))
	if len(merged) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		pairs = append(pairs, k+":"+merged[k])
	}
	return "|#" + strings.Join(pairs, ",")
}

func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
