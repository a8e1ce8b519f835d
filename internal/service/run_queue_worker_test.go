package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/service"
	"invoiceqc/mocks"
)

func TestRunQueueWorker_ClaimsAndDispatches(t *testing.T) {
	runRepo := new(mocks.MockRunRepo)
	runSvc := new(mocks.MockRunService)

	run := &domain.ValidationRun{ID: uuid.New(), Status: domain.RunStatusProcessing, FileCount: 1}

	// First poll claims one run, subsequent polls find the queue empty.
	runRepo.On("ClaimNextQueued", mock.Anything).Return(run, nil).Once()
	runRepo.On("ClaimNextQueued", mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	runSvc.On("ProcessRun", mock.Anything, run).Return().Maybe()

	worker := service.NewRunQueueWorker(runRepo, runSvc, service.RunQueueConfig{
		PollInterval: 50 * time.Millisecond,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	runSvc.AssertCalled(t, "ProcessRun", mock.Anything, run)
}

func TestRunQueueWorker_EmptyQueue(t *testing.T) {
	runRepo := new(mocks.MockRunRepo)
	runSvc := new(mocks.MockRunService)

	runRepo.On("ClaimNextQueued", mock.Anything).Return(nil, domain.ErrNotFound).Maybe()

	worker := service.NewRunQueueWorker(runRepo, runSvc, service.RunQueueConfig{
		PollInterval: 50 * time.Millisecond,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	runSvc.AssertNotCalled(t, "ProcessRun", mock.Anything, mock.Anything)
}

func TestRunQueueWorker_WaitsForInFlightRuns(t *testing.T) {
	runRepo := new(mocks.MockRunRepo)
	runSvc := new(mocks.MockRunService)

	run := &domain.ValidationRun{ID: uuid.New(), Status: domain.RunStatusProcessing, FileCount: 1}

	var finished atomic.Bool
	runRepo.On("ClaimNextQueued", mock.Anything).Return(run, nil).Once()
	runRepo.On("ClaimNextQueued", mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	runSvc.On("ProcessRun", mock.Anything, run).Run(func(mock.Arguments) {
		time.Sleep(150 * time.Millisecond)
		finished.Store(true)
	}).Return()

	worker := service.NewRunQueueWorker(runRepo, runSvc, service.RunQueueConfig{
		PollInterval: 50 * time.Millisecond,
		Concurrency:  1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	// Cancel while the run is still processing; Start must block on it.
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	assert.True(t, finished.Load(), "worker returned before the in-flight run finished")
}
