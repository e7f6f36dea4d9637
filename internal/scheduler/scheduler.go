package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job - именованная фоновая задача с периодом запуска
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler запускает задачи по тикеру, складывая каждую в общую очередь
// для пула воркеров: медленная задача не блокирует ни тикеры, ни другие
// задачи. Каждая задача дополнительно выполняется один раз при старте.
type Scheduler struct {
	jobs    []Job
	workers int

	queue chan Job
	wg    sync.WaitGroup
	stop  context.CancelFunc
}

func New(workers, queueSize int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 16
	}
	return &Scheduler{
		workers: workers,
		queue:   make(chan Job, queueSize),
	}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.stop = context.WithCancel(ctx)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	for _, job := range s.jobs {
		s.enqueue(ctx, job)

		s.wg.Add(1)
		go func(job Job) {
			defer s.wg.Done()
			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.enqueue(ctx, job)
				}
			}
		}(job)
	}

	log.Printf("Планировщик запущен: %d задач, %d воркеров", len(s.jobs), s.workers)
}

func (s *Scheduler) Stop() {
	if s.stop != nil {
		s.stop()
	}
	s.wg.Wait()
}

func (s *Scheduler) enqueue(ctx context.Context, job Job) {
	select {
	case s.queue <- job:
	case <-ctx.Done():
	default:
		// очередь заполнена: тик пропускается, задача выполнится на следующем
		log.Printf("Внимание: очередь задач заполнена, пропуск запуска %q", job.Name)
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.runJob(ctx, job)
		}
	}
}

// runJob выполняет задачу, не давая панике одной задачи уронить воркер
func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Внимание: паника в задаче %q: %v", job.Name, r)
		}
	}()

	started := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("Внимание: задача %q завершилась с ошибкой: %v", job.Name, err)
		return
	}
	log.Printf("Задача %q выполнена за %s", job.Name, time.Since(started).Round(time.Millisecond))
}
