package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/logging"
	"github.com/muurk/ssdpscan/internal/ssdp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout is the listen time of a search when none is given
	DefaultTimeout = 5 * time.Second

	// MinTimeout is the shortest listen time a search accepts
	MinTimeout = 2 * time.Second

	// DefaultWorkers is the number of replies resolved concurrently
	DefaultWorkers = 4

	// replyQueueSize buffers replies between sessions and workers
	replyQueueSize = 64
)

// Config holds the collaborators of a Coordinator. Zero fields select the
// system defaults.
type Config struct {
	// Transport opens session sockets (default: ssdp.UDPTransport)
	Transport ssdp.Transport

	// Interfaces lists active adapters (default: ssdp.SystemInterfaces)
	Interfaces ssdp.InterfaceProvider

	// Fetcher retrieves description documents (default: description.HTTPFetcher)
	Fetcher description.Fetcher

	// Cache holds fetched documents (default: a new, empty cache)
	Cache *description.Cache

	// Workers bounds concurrent reply resolution (default: DefaultWorkers)
	Workers int

	// StrictParse reports non-matching documents as parse errors in the log
	// instead of dropping them silently
	StrictParse bool
}

// Request describes one search
type Request struct {
	// ST is the search target (default: ssdp.SearchAll)
	ST string

	// Timeout is how long each session listens (default: DefaultTimeout, minimum: MinTimeout)
	Timeout time.Duration

	// MX is the advertised maximum reply delay in seconds (default: ssdp.DefaultMX)
	MX uint

	// Adapters overrides adapter discovery when non-empty
	Adapters []ssdp.Adapter

	// InterfaceNames restricts the active adapters to these interface names
	// when Adapters is empty
	InterfaceNames []string
}

// Coordinator runs SSDP searches across adapters and resolves the replies
// into devices. The description cache outlives individual searches.
type Coordinator struct {
	transport  ssdp.Transport
	interfaces ssdp.InterfaceProvider
	fetcher    description.Fetcher
	cache      *description.Cache
	parser     description.Parser
	workers    int

	flight     singleflight.Group
	minTimeout time.Duration
}

// New creates a Coordinator
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		transport:  cfg.Transport,
		interfaces: cfg.Interfaces,
		fetcher:    cfg.Fetcher,
		cache:      cfg.Cache,
		parser:     description.Parser{Strict: cfg.StrictParse},
		workers:    cfg.Workers,
		minTimeout: MinTimeout,
	}

	if c.transport == nil {
		c.transport = &ssdp.UDPTransport{TTL: ssdp.DefaultMulticastTTL}
	}
	if c.interfaces == nil {
		c.interfaces = ssdp.SystemInterfaces{}
	}
	if c.fetcher == nil {
		c.fetcher = description.NewHTTPFetcher(description.DefaultFetchTimeout)
	}
	if c.cache == nil {
		c.cache = description.NewCache()
	}
	if c.workers <= 0 {
		c.workers = DefaultWorkers
	}

	return c
}

// ClearCache drops every cached description document
func (c *Coordinator) ClearCache() {
	c.cache.Clear()
	logging.Debug("Description cache cleared")
}

// CacheLen returns the number of cached description documents
func (c *Coordinator) CacheLen() int {
	return c.cache.Len()
}

// SearchCameras searches for Scalar Web API devices
func (c *Coordinator) SearchCameras(ctx context.Context, timeout time.Duration, obs Observer) <-chan struct{} {
	return c.Search(ctx, Request{ST: ssdp.ScalarWebAPIService, Timeout: timeout}, obs)
}

// SearchUpnpDevices searches for UPnP devices matching st, or all devices
// when st is empty
func (c *Coordinator) SearchUpnpDevices(ctx context.Context, st string, timeout time.Duration, obs Observer) <-chan struct{} {
	if st == "" {
		st = ssdp.SearchAll
	}
	return c.Search(ctx, Request{ST: st, Timeout: timeout}, obs)
}

// Search starts a search and returns immediately. The returned channel is
// closed right after obs.OnFinished has been called. Cancelling ctx ends every
// session's listen phase early; OnFinished is still called exactly once.
func (c *Coordinator) Search(ctx context.Context, req Request, obs Observer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer obs.finished()
		c.run(ctx, req, obs)
	}()
	return done
}

// Collect runs a search to completion and returns its events. It fails only
// when there is no adapter to search on.
func (c *Coordinator) Collect(ctx context.Context, req Request) (*Result, error) {
	adapters, err := c.Adapters(req)
	if err != nil {
		return nil, err
	}
	req.Adapters = adapters

	col := &collector{}
	start := time.Now()
	<-c.Search(ctx, req, col.observer())

	col.mu.Lock()
	defer col.mu.Unlock()

	result := col.result
	result.Adapters = adapters
	result.Elapsed = time.Since(start)
	return &result, nil
}

// Adapters resolves the adapter set a request would search on
func (c *Coordinator) Adapters(req Request) ([]ssdp.Adapter, error) {
	if len(req.Adapters) > 0 {
		return req.Adapters, nil
	}

	active, err := c.interfaces.ActiveAdapters()
	if err != nil {
		return nil, NewNoAdaptersError(err)
	}

	if len(req.InterfaceNames) > 0 {
		active, err = ssdp.FilterAdapters(active, req.InterfaceNames)
		if err != nil {
			return nil, NewNoAdaptersError(err)
		}
	}

	if len(active) == 0 {
		return nil, NewNoAdaptersError(nil)
	}
	return active, nil
}

// EffectiveTimeout applies the default and the minimum to a requested timeout
func (c *Coordinator) EffectiveTimeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		requested = DefaultTimeout
	}
	if requested < c.minTimeout {
		return c.minTimeout
	}
	return requested
}

func (c *Coordinator) run(ctx context.Context, req Request, obs Observer) {
	st := req.ST
	if st == "" {
		st = ssdp.SearchAll
	}

	query, err := ssdp.BuildSearchRequest(st, req.MX)
	if err != nil {
		logging.Error("Failed to build search request", zap.Error(err))
		return
	}

	adapters, err := c.Adapters(req)
	if err != nil {
		logging.Warn("Search has no adapters", zap.Error(err))
		return
	}

	timeout := c.EffectiveTimeout(req.Timeout)
	logging.Info("Starting SSDP search",
		zap.String("st", st),
		zap.Duration("timeout", timeout),
		zap.Int("adapters", len(adapters)),
	)

	replies := make(chan ssdp.Reply, replyQueueSize)

	var workers sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for reply := range replies {
				c.resolve(ctx, reply, obs)
			}
		}()
	}

	enqueue := func(reply ssdp.Reply) {
		select {
		case replies <- reply:
		case <-ctx.Done():
		}
	}

	var sessions sync.WaitGroup
	for _, adapter := range adapters {
		sess := ssdp.NewSession(adapter, c.transport, query, timeout)
		sessions.Add(1)
		go func() {
			defer sessions.Done()
			if err := sess.Run(ctx, enqueue); err != nil {
				serr := NewSessionError(adapter.Name(), err)
				logging.Warn("Search session failed",
					zap.String("adapter", adapter.String()),
					zap.Stringer("type", serr.Type),
					zap.Error(serr),
				)
			}
		}()
	}

	sessions.Wait()
	close(replies)
	workers.Wait()

	logging.Info("SSDP search finished", zap.String("st", st))
}

// resolve turns one reply into events
func (c *Coordinator) resolve(ctx context.Context, reply ssdp.Reply, obs Observer) {
	location, ok := ssdp.ParseLocation(reply.Payload)
	if !ok {
		logging.Debug("Dropping reply without LOCATION",
			zap.String("adapter", reply.Adapter.Name()),
			zap.Stringer("remote", reply.RemoteAddr),
		)
		return
	}

	doc, err := c.document(ctx, location)
	if err != nil {
		serr := NewFetchError(location, err)
		logging.Debug("Description fetch failed",
			zap.String("location", location),
			zap.Stringer("type", serr.Type),
			zap.Error(serr),
		)
		return
	}

	obs.description(DescriptionEvent{
		Location:   location,
		LocalAddr:  reply.LocalAddr,
		RemoteAddr: reply.RemoteAddr,
		Adapter:    reply.Adapter,
		Document:   doc,
	})

	device, err := c.parser.Parse(doc)
	if err != nil {
		serr := NewParseError(location, err)
		logging.Info("Description rejected",
			zap.String("location", location),
			zap.Stringer("type", serr.Type),
			zap.Error(serr),
		)
		return
	}
	if device == nil {
		return
	}

	logging.Debug("Device discovered",
		zap.String("udn", device.UDN),
		zap.String("model", device.ModelName),
		zap.String("location", location),
		zap.Stringer("local", reply.LocalAddr),
	)

	obs.device(DeviceEvent{
		Location:   location,
		LocalAddr:  reply.LocalAddr,
		RemoteAddr: reply.RemoteAddr,
		Adapter:    reply.Adapter,
		Device:     device,
	})
}

// document returns the description at location from the cache, fetching it
// on a miss. Concurrent misses for one location share a single fetch, which
// is detached from any one caller's cancellation so a cancelled search never
// fails another search waiting on the same location. The fetcher's own
// timeout bounds it.
func (c *Coordinator) document(ctx context.Context, location string) ([]byte, error) {
	if doc, ok := c.cache.Lookup(location); ok {
		logging.Debug("Description cache hit", zap.String("location", location))
		return doc, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(location, func() (interface{}, error) {
		if doc, ok := c.cache.Lookup(location); ok {
			return doc, nil
		}
		doc, err := c.fetcher.Fetch(fetchCtx, location)
		if err != nil {
			return nil, err
		}
		c.cache.Store(location, doc)
		return doc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
