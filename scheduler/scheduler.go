package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"feedadmin/logger"
)

// TimeOfDay 하루 중 실행 시각 (로컬 시간)
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Job 주기 실행 작업. At 이 있으면 첫 실행은 다음 At 시각이고 이후 Interval 마다 반복된다.
type Job struct {
	Name     string
	Interval time.Duration
	At       *TimeOfDay
	Run      func(ctx context.Context) error
}

type entry struct {
	job     Job
	nextRun time.Time
	running bool
}

// Scheduler 이름 기반 반복 작업 실행기
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*entry
	now  func() time.Time
	tick time.Duration
	loc  *time.Location
}

// Option Scheduler 설정 함수
type Option func(*Scheduler)

// WithClock 시계를 교체 (테스트용)
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithTick 실행 대상 확인 주기
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

// WithLocation TimeOfDay 해석 기준 시간대
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// New 스케줄러 생성
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs: make(map[string]*entry),
		now:  time.Now,
		tick: time.Minute,
		loc:  time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 작업 등록. 같은 이름이 있으면 교체하고 다음 실행 시각을 다시 계산한다.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s needs a positive interval", job.Name)
	}
	if job.At != nil && (job.At.Hour < 0 || job.At.Hour > 23 || job.At.Minute < 0 || job.At.Minute > 59) {
		return fmt.Errorf("job %s has an invalid time of day", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &entry{job: job, nextRun: s.firstRun(job, s.now())}

	logger.WithFields(map[string]interface{}{
		"job":      job.Name,
		"interval": job.Interval.String(),
		"next_run": s.jobs[job.Name].nextRun.Format(time.RFC3339),
	}).Info("Scheduled job registered")
	return nil
}

// Unregister 작업 제거. 없으면 false.
func (s *Scheduler) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; !ok {
		return false
	}
	delete(s.jobs, name)
	logger.WithFields(map[string]interface{}{"job": name}).Info("Scheduled job removed")
	return true
}

// NextRun 다음 실행 예정 시각
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return e.nextRun, true
}

// Jobs 등록된 작업 이름 목록
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) firstRun(job Job, now time.Time) time.Time {
	if job.At == nil {
		return now.Add(job.Interval)
	}
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), job.At.Hour, job.At.Minute, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunDue 실행 시각이 지난 작업을 순서대로 실행하고 실행한 개수를 돌려준다.
func (s *Scheduler) RunDue(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	due := make([]*entry, 0)
	for _, e := range s.jobs {
		if !e.running && !now.Before(e.nextRun) {
			e.running = true
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].job.Name < due[j].job.Name })

	for _, e := range due {
		s.run(ctx, e, now)
	}
	return len(due)
}

func (s *Scheduler) run(ctx context.Context, e *entry, now time.Time) {
	started := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return e.job.Run(ctx)
	}()

	s.mu.Lock()
	e.running = false
	// 밀린 실행은 한 번으로 합친다
	next := e.nextRun.Add(e.job.Interval)
	for !next.After(now) {
		next = next.Add(e.job.Interval)
	}
	e.nextRun = next
	s.mu.Unlock()

	fields := map[string]interface{}{
		"job":      e.job.Name,
		"duration": time.Since(started).String(),
		"next_run": next.Format(time.RFC3339),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.WithFields(fields).Error("Scheduled job failed")
		return
	}
	logger.WithFields(fields).Info("Scheduled job finished")
}

// Start 고루틴으로 주기적 실행. ctx 가 끝나면 멈춘다.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("Scheduler started")

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("Scheduler stopped")
				return
			case <-ticker.C:
				s.RunDue(ctx)
			}
		}
	}()
}
