package model

import (
	"sync"
	"testing"

	"github.com/reopenlab/reopenml/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	sm := NewStateManager()

	if sm.IsFitted() {
		t.Error("new StateManager reports fitted")
	}
	if err := sm.RequireFitted("TestModel", "Predict"); err == nil {
		t.Error("RequireFitted() on unfitted state expected error")
	}

	sm.SetDimensions(3, 100)
	sm.SetFitted()

	if !sm.IsFitted() {
		t.Error("SetFitted() did not stick")
	}
	if err := sm.RequireFitted("TestModel", "Predict"); err != nil {
		t.Errorf("RequireFitted() on fitted state error = %v", err)
	}

	nFeatures, nSamples := sm.GetDimensions()
	if nFeatures != 3 || nSamples != 100 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 100)", nFeatures, nSamples)
	}

	sm.Reset()
	if sm.IsFitted() {
		t.Error("Reset() did not clear the fitted state")
	}
	if nFeatures, nSamples := sm.GetDimensions(); nFeatures != 0 || nSamples != 0 {
		t.Error("Reset() did not clear the dimensions")
	}
}

func TestStateManagerRequireFittedErrorType(t *testing.T) {
	err := NewStateManager().RequireFitted("KNN", "PredictProba")

	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("error = %v, want NotFittedError", err)
	}
	if nfe.ModelName != "KNN" || nfe.Method != "PredictProba" {
		t.Errorf("NotFittedError = %+v, want ModelName KNN and Method PredictProba", nfe)
	}
}

func TestStateManagerConcurrentAccess(t *testing.T) {
	sm := NewStateManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sm.SetFitted()
		}()
		go func() {
			defer wg.Done()
			sm.IsFitted()
		}()
	}
	wg.Wait()

	if !sm.IsFitted() {
		t.Error("StateManager not fitted after concurrent SetFitted calls")
	}
}
