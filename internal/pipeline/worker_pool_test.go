package pipeline

import (
	"sync"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	pool := NewWorkerPool(4)
	if pool == nil {
		t.Fatal("Expected non-nil worker pool")
	}
}

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	// Should default to runtime.NumCPU() when workers <= 0
	pool := NewWorkerPool(0)
	if pool == nil {
		t.Error("Expected non-nil WorkerPool")
	}
}

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var counter int
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}

	pool.Wait()

	if counter != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter)
	}
}

func TestWorkerPool_Concurrent(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	var results []int
	var mu sync.Mutex

	for i := 0; i < 10; i++ {
		value := i
		pool.Submit(func() {
			processedValue := value * 2
			mu.Lock()
			results = append(results, processedValue)
			mu.Unlock()
		})
	}

	pool.Wait()

	if len(results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(results))
	}
}

func TestWorkerPool_StartOnce(t *testing.T) {
	pool := NewWorkerPool(2)

	// Start should be idempotent
	pool.Start()
	pool.Start()

	defer pool.Close()

	var executed bool
	var mu sync.Mutex
	pool.Submit(func() {
		mu.Lock()
		executed = true
		mu.Unlock()
	})

	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !executed {
		t.Error("Expected job to be executed")
	}
}

func TestWorkerPool_WaitAfterAllJobs(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()

	var order []int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		i := i
		pool.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	pool.Wait()
	pool.Close()

	if len(order) != 3 {
		t.Errorf("Expected 3 completed jobs before Wait returned, got %d", len(order))
	}
}
