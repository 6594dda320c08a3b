package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scanbridge/internal/cart"
	"scanbridge/internal/domain"
	"scanbridge/internal/scan"
	"scanbridge/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// EventPublisher receives every event the pipeline produces; the WebSocket
// hub implements it in production.
type EventPublisher interface {
	Publish(event domain.Event)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(domain.Event) {}

var (
	ErrSurfaceNotFound = errors.New("scan surface not found")
	ErrEmptyScan       = errors.New("empty scan payload")
)

type Config struct {
	RepeatWindow    time.Duration
	HIDInterKeyGap  time.Duration
	HIDFlushTimeout time.Duration
}

// surface is one open scanner UI. It owns its own dedup session and HID burst
// buffer; nothing is shared between surfaces. The mutex serializes the
// pipeline so each scan is processed to completion before the next.
type surface struct {
	mu      sync.Mutex
	info    domain.SurfaceInfo
	session *scan.Session
	hid     *scan.BurstAssembler
}

type Service struct {
	repo      store.Repository
	adapter   *cart.Adapter
	publisher EventPublisher
	cfg       Config

	mu       sync.RWMutex
	surfaces map[string]*surface
	carts    map[string]*cart.Cart
}

func New(repo store.Repository, adapter *cart.Adapter, publisher EventPublisher, cfg Config) *Service {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Service{
		repo:      repo,
		adapter:   adapter,
		publisher: publisher,
		cfg:       cfg,
		surfaces:  make(map[string]*surface),
		carts:     make(map[string]*cart.Cart),
	}
}

// OpenSurface creates a scan surface for one scanner UI instance. Each call
// returns fresh dedup state.
func (s *Service) OpenSurface(_ context.Context, terminalID string, kind string) (domain.SurfaceInfo, error) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		return domain.SurfaceInfo{}, store.ErrInvalidInput
	}
	if kind != domain.SurfaceKindCustomer {
		kind = domain.SurfaceKindProduct
	}

	surf := &surface{
		info: domain.SurfaceInfo{
			ID:         uuid.NewString(),
			TerminalID: terminalID,
			Kind:       kind,
			OpenedAt:   time.Now().UTC(),
		},
		session: scan.NewSession(s.cfg.RepeatWindow),
	}
	surf.hid = scan.NewBurstAssembler(scan.BurstConfig{
		InterKeyGap:  s.cfg.HIDInterKeyGap,
		FlushTimeout: s.cfg.HIDFlushTimeout,
	}, func(code string, timestampMs int64) {
		s.handleBurst(surf.info.ID, code, timestampMs)
	})

	s.mu.Lock()
	s.surfaces[surf.info.ID] = surf
	s.mu.Unlock()

	log.Printf("[service] surface opened id=%s terminal=%s kind=%s", surf.info.ID, terminalID, kind)
	return surf.info, nil
}

// CloseSurface tears down a surface: the HID buffer is discarded with its
// flush timer and the dedup state is cleared so nothing leaks into the next
// session on the same terminal.
func (s *Service) CloseSurface(_ context.Context, surfaceID string) error {
	s.mu.Lock()
	surf, ok := s.surfaces[surfaceID]
	if ok {
		delete(s.surfaces, surfaceID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSurfaceNotFound
	}
	surf.hid.Close()
	surf.session.Reset()
	log.Printf("[service] surface closed id=%s", surfaceID)
	return nil
}

func (s *Service) surfaceByID(surfaceID string) (*surface, bool) {
	s.mu.RLock()
	surf, ok := s.surfaces[surfaceID]
	s.mu.RUnlock()
	return surf, ok
}

// SubmitScan runs one camera/physical-reader decode through the pipeline.
func (s *Service) SubmitScan(ctx context.Context, surfaceID string, raw string, decoderFormat string, channel string, timestampMs int64) (domain.ScanOutcome, error) {
	surf, ok := s.surfaceByID(surfaceID)
	if !ok {
		return domain.ScanOutcome{}, ErrSurfaceNotFound
	}
	if raw == "" {
		return domain.ScanOutcome{}, ErrEmptyScan
	}
	if channel != domain.ChannelKeyboard {
		channel = domain.ChannelCamera
	}
	if timestampMs <= 0 {
		timestampMs = time.Now().UnixMilli()
	}

	res := scan.Classify(raw, decoderFormat, channel, timestampMs)
	return s.process(ctx, surf, res)
}

// SubmitKeystroke feeds one keyboard-wedge character event into the surface's
// burst buffer. Completed bursts re-enter the pipeline as whole scans.
func (s *Service) SubmitKeystroke(_ context.Context, surfaceID string, key string, timestampMs int64) error {
	surf, ok := s.surfaceByID(surfaceID)
	if !ok {
		return ErrSurfaceNotFound
	}
	if key == "" {
		return store.ErrInvalidInput
	}
	if timestampMs <= 0 {
		timestampMs = time.Now().UnixMilli()
	}

	ch := []rune(key)[0]
	if key == "Enter" {
		ch = '\n'
	}
	surf.hid.Key(ch, timestampMs)
	return nil
}

// handleBurst is the burst assembler's emit callback. It may fire from the
// flush timer goroutine, so it builds its own context.
func (s *Service) handleBurst(surfaceID string, code string, timestampMs int64) {
	surf, ok := s.surfaceByID(surfaceID)
	if !ok {
		// Surface closed between arming the timer and the flush; drop.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := scan.Classify(code, domain.SymbologyCode128, domain.ChannelKeyboard, timestampMs)
	if _, err := s.process(ctx, surf, res); err != nil {
		log.Printf("[service] WARN: keyboard-wedge scan failed surface=%s: %v", surfaceID, err)
	}
}

// process is the single path every scan takes: dedup decision, product
// resolution, cart mutation, history, events. Serialized per surface.
func (s *Service) process(ctx context.Context, surf *surface, res domain.ScanResult) (domain.ScanOutcome, error) {
	surf.mu.Lock()
	defer surf.mu.Unlock()

	decision := surf.session.Submit(res)

	if decision.Kind == scan.DecisionMultiplierPrompt {
		s.recordScan(ctx, surf, res, domain.ScanStatusMultiplierRequested)
		s.publisher.Publish(domain.Event{
			Type:       domain.EventMultiplierRequested,
			SurfaceID:  surf.info.ID,
			TerminalID: surf.info.TerminalID,
			Code:       res.Code(),
			At:         time.Now().UTC(),
		})
		return domain.ScanOutcome{Status: domain.ScanStatusMultiplierRequested, Code: res.Code()}, nil
	}

	cmd, err := s.adapter.Resolve(ctx, res, decision.Multiplier)
	if err != nil {
		if errors.Is(err, cart.ErrProductNotFound) {
			s.recordScan(ctx, surf, res, domain.ScanStatusProductNotFound)
			s.publisher.Publish(domain.Event{
				Type:       domain.EventScanRejected,
				SurfaceID:  surf.info.ID,
				TerminalID: surf.info.TerminalID,
				Code:       res.Code(),
				Reason:     "product not found",
				At:         time.Now().UTC(),
			})
			return domain.ScanOutcome{Status: domain.ScanStatusProductNotFound, Code: res.Code()}, nil
		}
		return domain.ScanOutcome{}, err
	}

	mutation := s.cartFor(surf.info.TerminalID).Apply(cmd)
	s.recordScan(ctx, surf, res, domain.ScanStatusAccepted)

	now := time.Now().UTC()
	s.publisher.Publish(domain.Event{
		Type:       domain.EventScanAccepted,
		SurfaceID:  surf.info.ID,
		TerminalID: surf.info.TerminalID,
		Code:       res.Code(),
		Scan:       &res,
		At:         now,
	})
	s.publisher.Publish(domain.Event{
		Type:       domain.EventCartMutation,
		SurfaceID:  surf.info.ID,
		TerminalID: surf.info.TerminalID,
		Mutation:   &mutation,
		At:         now,
	})

	return domain.ScanOutcome{
		Status:   domain.ScanStatusAccepted,
		Code:     res.Code(),
		Scan:     &res,
		Mutation: &mutation,
	}, nil
}

// SetMultiplier answers an outstanding multiplier prompt, or pre-arms a
// quick-quantity multiplier for the next scan when no prompt is pending.
func (s *Service) SetMultiplier(ctx context.Context, surfaceID string, value int) (domain.ScanOutcome, error) {
	surf, ok := s.surfaceByID(surfaceID)
	if !ok {
		return domain.ScanOutcome{}, ErrSurfaceNotFound
	}
	if value < 1 {
		return domain.ScanOutcome{}, store.ErrInvalidInput
	}

	surf.mu.Lock()
	defer surf.mu.Unlock()

	res, prompted := surf.session.ConsumePrompt()
	if !prompted {
		surf.session.Arm(value)
		return domain.ScanOutcome{Status: domain.ScanStatusMultiplierArmed}, nil
	}

	cmd, err := s.adapter.Resolve(ctx, res, 1)
	if err != nil {
		if errors.Is(err, cart.ErrProductNotFound) {
			return domain.ScanOutcome{Status: domain.ScanStatusProductNotFound, Code: res.Code()}, nil
		}
		return domain.ScanOutcome{}, err
	}

	terminalCart := s.cartFor(surf.info.TerminalID)
	mutation, found := terminalCart.SetQuantity(cmd.Product.SKU, float64(value))
	if !found {
		// Line vanished (cart cleared mid-prompt); apply as a fresh line with
		// the chosen quantity.
		cmd.Quantity = float64(value)
		mutation = terminalCart.Apply(cmd)
	}

	s.publisher.Publish(domain.Event{
		Type:       domain.EventCartMutation,
		SurfaceID:  surf.info.ID,
		TerminalID: surf.info.TerminalID,
		Mutation:   &mutation,
		At:         time.Now().UTC(),
	})
	return domain.ScanOutcome{Status: domain.ScanStatusAccepted, Code: res.Code(), Mutation: &mutation}, nil
}

func (s *Service) cartFor(terminalID string) *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[terminalID]
	if !ok {
		c = cart.New(terminalID)
		s.carts[terminalID] = c
	}
	return c
}

func (s *Service) CartLines(_ context.Context, terminalID string) []domain.CartLine {
	return s.cartFor(terminalID).Lines()
}

func (s *Service) ClearCart(_ context.Context, terminalID string) {
	s.cartFor(terminalID).Clear()
}

func (s *Service) recordScan(ctx context.Context, surf *surface, res domain.ScanResult, status string) {
	err := s.repo.CreateScanEvent(ctx, domain.ScanEvent{
		SurfaceID:   surf.info.ID,
		TerminalID:  surf.info.TerminalID,
		Channel:     res.Channel,
		Symbology:   res.Symbology,
		RawData:     res.RawData,
		ProductCode: res.ProductCode,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[service] WARN: failed to record scan event surface=%s: %v", surf.info.ID, err)
	}
}

func (s *Service) ListScanEvents(ctx context.Context, terminalID string, limit int) ([]domain.ScanEvent, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListScanEvents(ctx, terminalID, limit)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.GTIN = strings.TrimSpace(req.GTIN)

	if req.SKU == "" || req.Name == "" || req.Category == "" || req.PriceCents < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		PriceCents:   req.PriceCents,
		Barcode:      req.Barcode,
		GTIN:         req.GTIN,
		SoldByWeight: req.SoldByWeight,
		Active:       true,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, sku string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return domain.Product{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetProductBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Category = category
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 1 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.Barcode != nil {
		updated.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.GTIN != nil {
		updated.GTIN = strings.TrimSpace(*req.GTIN)
	}
	if req.SoldByWeight != nil {
		updated.SoldByWeight = *req.SoldByWeight
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	return *saved, nil
}
