package state

import (
	"SmartCanteen-Backend/entities"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Names of the persisted documents.
const (
	DocPreOrdersToday    = "preorders_today"
	DocPreOrdersTomorrow = "preorders_tomorrow"
	DocProductionPlan    = "production_plan"
	DocOptimizationMode  = "optimization_mode"
	DocActiveRole        = "active_role"
	DocKitchenPrepared   = "kitchen_prepared"
)

// SchemaVersion is the payload layout this build reads and writes.
const SchemaVersion = 1

var ErrUnsupportedSchema = errors.New("state document has a newer schema version")

type (
	StateService interface {
		// Load decodes the named document into out. A missing document leaves out untouched.
		Load(ctx context.Context, name string, out interface{}) error
		Save(ctx context.Context, name string, value interface{}) error
		// Update loads the document into out, runs mutate and saves out, holding the
		// document's lock for the whole sequence. A mutate error aborts the save.
		Update(ctx context.Context, name string, out interface{}, mutate func() error) error
	}

	stateService struct {
		stateRepository StateRepository

		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}
)

func NewStateService(stateRepository StateRepository) StateService {
	return &stateService{
		stateRepository: stateRepository,
		locks:           make(map[string]*sync.Mutex),
	}
}

func (s *stateService) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

func (s *stateService) Load(ctx context.Context, name string, out interface{}) error {
	doc, err := s.stateRepository.GetDocument(ctx, name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if doc == nil {
		return nil
	}
	if doc.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: %s is v%d, this build reads v%d", ErrUnsupportedSchema, name, doc.SchemaVersion, SchemaVersion)
	}
	if err := json.Unmarshal([]byte(doc.Payload), out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *stateService) Save(ctx context.Context, name string, value interface{}) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.save(ctx, name, value)
}

func (s *stateService) save(ctx context.Context, name string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.stateRepository.SaveDocument(ctx, &entities.StateDocument{
		Name:          name,
		SchemaVersion: SchemaVersion,
		Payload:       string(payload),
	})
}

func (s *stateService) Update(ctx context.Context, name string, out interface{}, mutate func() error) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	if err := s.Load(ctx, name, out); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return s.save(ctx, name, out)
}
