package model

import (
	"sync"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// StateManager tracks the fitted state of an estimator in a thread-safe
// manner. Estimators hold it by composition rather than embedding.
type StateManager struct {
	fitted bool
	mu     sync.RWMutex

	nFeatures int
	nSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Reset returns the model to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// SetDimensions records the shape of the training data.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// GetDimensions returns the shape of the training data seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError naming the model and method if the
// model has not been fitted yet.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
