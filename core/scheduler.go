package core

import (
	"context"
	"time"
)

// MaxTasks is the size of the task table.
const MaxTasks = 16

// maxStepsPerInstant bounds how many task steps RunUntil allows without the
// clock moving.
const maxStepsPerInstant = 4096

// TaskID is a task's slot index.
type TaskID uint8

// Task is a cooperative state machine. Step runs from the current suspension
// point to the next one and returns the condition to wait on. Step must not
// block and must not hold a BusGuard lease when it returns.
type Task interface {
	Step(now Time) Wait
}

// Initializer is implemented by tasks that bring up a peripheral before the
// scheduler runs anything.
type Initializer interface {
	Init() error
}

// Timer is a node of the sleeper queue, kept sorted by WakeTime.
type Timer struct {
	WakeTime Time
	Next     *Timer
	id       TaskID
}

type slot struct {
	name  string
	task  Task
	wait  Wait
	timer Timer
	runs  uint32
}

// Idler parks the core when no task is ready. It returns after d, when wake
// fires, or when ctx is done, whichever is first.
type Idler interface {
	Idle(ctx context.Context, d time.Duration, wake <-chan struct{})
}

// SleepIdler idles with a reusable runtime timer.
type SleepIdler struct {
	t *time.Timer
}

func (i *SleepIdler) Idle(ctx context.Context, d time.Duration, wake <-chan struct{}) {
	if d <= 0 {
		return
	}
	if i.t == nil {
		i.t = time.NewTimer(d)
	} else {
		i.t.Reset(d)
	}
	select {
	case <-i.t.C:
	case <-wake:
		i.t.Stop()
	case <-ctx.Done():
		i.t.Stop()
	}
}

// Scheduler runs a fixed table of tasks on one thread. Each pass checks
// every slot's wait condition, starting after the slot that ran last, and
// runs the first ready one to its next suspension point.
//
// A panic inside Step is not recovered.
type Scheduler struct {
	clock   Clock
	idler   Idler
	maxIdle time.Duration
	log     *TaskLog

	slots   [MaxTasks]slot
	n       int
	last    int
	started bool

	// sleeper queue
	timers *Timer

	wake chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithIdler replaces the default SleepIdler.
func WithIdler(i Idler) Option {
	return func(s *Scheduler) { s.idler = i }
}

// WithMaxIdle caps a single idle period when no deadline is pending.
func WithMaxIdle(d time.Duration) Option {
	return func(s *Scheduler) { s.maxIdle = d }
}

// WithLogger attaches a logger for scheduler events.
func WithLogger(l *Logger) Option {
	return func(s *Scheduler) { s.log = l.Named("sched") }
}

// NewScheduler returns an empty scheduler reading time from clock.
func NewScheduler(clock Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   clock,
		maxIdle: 100 * time.Millisecond,
		last:    -1,
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idler == nil {
		s.idler = &SleepIdler{}
	}
	return s
}

// Spawn adds t to the table. Tasks start Ready. Spawning is only allowed
// before Start.
func (s *Scheduler) Spawn(name string, t Task) (TaskID, error) {
	if s.started {
		return 0, ErrSchedulerStarted
	}
	if s.n == MaxTasks {
		return 0, ErrTaskTableFull
	}
	id := TaskID(s.n)
	s.slots[s.n] = slot{
		name:  name,
		task:  t,
		wait:  Yield(),
		timer: Timer{id: id},
	}
	s.n++
	return id, nil
}

// Start initializes every task that implements Initializer, in slot order.
// The first failure is returned as an *InitError and the scheduler stays
// stopped.
func (s *Scheduler) Start() error {
	if s.started {
		return nil
	}
	for i := 0; i < s.n; i++ {
		sl := &s.slots[i]
		in, ok := sl.task.(Initializer)
		if !ok {
			continue
		}
		if err := in.Init(); err != nil {
			s.log.Error("init " + sl.name + " failed: " + err.Error())
			return &InitError{Task: sl.name, Err: err}
		}
	}
	s.started = true
	s.log.Info("started " + Itoa(s.n) + " tasks")
	return nil
}

// Notify wakes an idle scheduler. Safe from interrupt context.
func (s *Scheduler) Notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// RunOnce runs at most one ready task and reports whether one ran.
func (s *Scheduler) RunOnce() bool {
	if !s.started {
		panic("core: RunOnce before Start")
	}
	now := s.clock.Now()
	s.dispatchTimers(now)

	for i := 1; i <= s.n; i++ {
		idx := (s.last + i) % s.n
		sl := &s.slots[idx]
		if sl.wait.Kind == WaitSleep || !sl.wait.Satisfied(now) {
			continue
		}
		s.last = idx
		sl.runs++
		w := sl.task.Step(now)
		s.suspend(sl, w)
		return true
	}
	return false
}

// Run drives the table until ctx is done, idling between deadlines.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.RunOnce() {
			continue
		}
		d := s.maxIdle
		if next, ok := s.NextDeadline(); ok {
			if u := s.clock.Now().Until(next); u < d {
				d = u
			}
		}
		s.idler.Idle(ctx, d, s.wake)
	}
}

type settableClock interface {
	Clock
	Set(Time)
}

// RunUntil runs in virtual time: it runs every ready task, then jumps the
// clock to the next deadline, until the next deadline lies after end. The
// clock is left at end. The scheduler's clock must be a *ManualClock or
// anything else with a Set method.
func (s *Scheduler) RunUntil(end Time) error {
	c, ok := s.clock.(settableClock)
	if !ok {
		return ErrNotManualClock
	}
	if err := s.Start(); err != nil {
		return err
	}
	for {
		steps := 0
		for s.RunOnce() {
			steps++
			if steps > maxStepsPerInstant {
				return ErrStalled
			}
		}
		next, ok := s.NextDeadline()
		if !ok || end.Before(next) {
			if c.Now().Before(end) {
				c.Set(end)
			}
			return nil
		}
		c.Set(next)
	}
}

// NextDeadline returns the earliest sleeping task's wake time.
func (s *Scheduler) NextDeadline() (Time, bool) {
	if s.timers == nil {
		return 0, false
	}
	return s.timers.WakeTime, true
}

func (s *Scheduler) suspend(sl *slot, w Wait) {
	sl.wait = w
	switch w.Kind {
	case WaitSleep:
		sl.timer.WakeTime = w.Until
		s.insertTimer(&sl.timer)
	case WaitDone:
		s.log.Info(sl.name + " finished")
	}
}

// insertTimer inserts t after every queued timer that is not later than it,
// so equal deadlines run in the order they were queued.
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timers == nil || t.WakeTime.Before(s.timers.WakeTime) {
		t.Next = s.timers
		s.timers = t
		return
	}

	current := s.timers
	for current.Next != nil && !t.WakeTime.Before(current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// dispatchTimers marks every sleeper whose deadline has passed as ready.
func (s *Scheduler) dispatchTimers(now Time) {
	for s.timers != nil && now.Reached(s.timers.WakeTime) {
		t := s.timers
		s.timers = t.Next
		t.Next = nil
		s.slots[t.id].wait = Yield()
	}
}

// Len returns the number of spawned tasks.
func (s *Scheduler) Len() int {
	return s.n
}

// Name returns the name a task was spawned with.
func (s *Scheduler) Name(id TaskID) string {
	return s.slots[id].name
}

// State returns the condition a task is currently suspended on.
func (s *Scheduler) State(id TaskID) Wait {
	return s.slots[id].wait
}

// Runs returns how many times a task has been stepped.
func (s *Scheduler) Runs(id TaskID) uint32 {
	return s.slots[id].runs
}

// Finished reports whether every task has returned Done.
func (s *Scheduler) Finished() bool {
	for i := 0; i < s.n; i++ {
		if s.slots[i].wait.Kind != WaitDone {
			return false
		}
	}
	return s.n > 0
}
