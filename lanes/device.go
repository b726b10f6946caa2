package lanes

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/waitnotify"
	"github.com/joeycumines/logiface"
	"golang.org/x/sync/errgroup"
)

// Device is a fixed set of lanes, in groups of equal size.
type Device struct {
	logger        *logiface.Logger[logiface.Event]
	groups        int
	lanesPerGroup int
	affinity      bool
}

// Lane is one execution lane of a Device.
type Lane struct {
	device *Device
	group  int
	index  int
}

// NewDevice constructs a Device with the given shape.
func NewDevice(groups, lanesPerGroup int, opts ...Option) (*Device, error) {
	if groups < 1 || lanesPerGroup < 1 {
		return nil, fmt.Errorf(`lanes: %d groups of %d lanes: %w`, groups, lanesPerGroup, syncscope.ErrInvalidCount)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Device{
		logger:        cfg.logger,
		groups:        groups,
		lanesPerGroup: lanesPerGroup,
		affinity:      cfg.affinity,
	}, nil
}

// Groups returns the number of groups.
func (d *Device) Groups() int { return d.groups }

// LanesPerGroup returns the number of lanes in each group.
func (d *Device) LanesPerGroup() int { return d.lanesPerGroup }

// Lanes returns the total number of lanes.
func (d *Device) Lanes() int { return d.groups * d.lanesPerGroup }

// EngineOptions returns the options for a wait/notify engine, or a primitive,
// used by the lanes of this device at the given scope.
func (d *Device) EngineOptions(scope syncscope.Scope) []waitnotify.Option {
	return []waitnotify.Option{
		waitnotify.WithPlatform(Platform()),
		waitnotify.WithScope(scope),
		waitnotify.WithLogger(d.logger),
	}
}

// Scope returns the narrowest scope spanning both lanes.
func (d *Device) Scope(a, b *Lane) syncscope.Scope {
	switch {
	case a.device != d || b.device != d:
		return syncscope.ScopeSystem
	case a.group != b.group:
		return syncscope.ScopeDevice
	case a.index != b.index:
		return syncscope.ScopeGroup
	default:
		return syncscope.ScopeLane
	}
}

// Launch runs fn once on every lane, concurrently, and waits for all of them.
// Errors and panics of every lane are aggregated into the returned error,
// which is a [*multierror.Error]. The earliest failure is also logged.
//
// A lane that fails does not stop its siblings, which must not depend on it
// to make progress.
func (d *Device) Launch(fn func(lane *Lane) error) error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		result *multierror.Error
	)
	d.logger.Debug().
		Int(`groups`, d.groups).
		Int(`lanes_per_group`, d.lanesPerGroup).
		Bool(`affinity`, d.affinity).
		Log(`lanes: launch`)
	for group := 0; group < d.groups; group++ {
		for index := 0; index < d.lanesPerGroup; index++ {
			lane := &Lane{device: d, group: group, index: index}
			g.Go(func() error {
				err := d.run(lane, fn)
				if err != nil {
					mu.Lock()
					result = multierror.Append(result, err)
					mu.Unlock()
				}
				return err
			})
		}
	}
	// the group only joins, and reports the earliest failure, every failure
	// is in result
	first := g.Wait()
	if err := result.ErrorOrNil(); err != nil {
		d.logger.Err().
			Err(err).
			Str(`first`, first.Error()).
			Int(`failed`, len(result.Errors)).
			Log(`lanes: launch failed`)
		return err
	}
	return nil
}

func (d *Device) run(lane *Lane, fn func(lane *Lane) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf(`lanes: lane %d panicked: %w`, lane.ID(), e)
			} else {
				err = fmt.Errorf(`lanes: lane %d panicked: %v`, lane.ID(), r)
			}
		}
	}()
	if d.affinity {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := pinToCPU(lane.group); err != nil && !errors.Is(err, syncscope.ErrUnsupported) {
			d.logger.Warning().
				Err(err).
				Int(`lane`, lane.ID()).
				Log(`lanes: failed to pin lane`)
		}
	}
	if err := fn(lane); err != nil {
		return fmt.Errorf(`lanes: lane %d: %w`, lane.ID(), err)
	}
	return nil
}

// ID returns the index of the lane within the device.
func (l *Lane) ID() int { return l.group*l.device.lanesPerGroup + l.index }

// Group returns the group of the lane.
func (l *Lane) Group() int { return l.group }

// Index returns the index of the lane within its group.
func (l *Lane) Index() int { return l.index }

// Device returns the device of the lane.
func (l *Lane) Device() *Device { return l.device }

// String implements fmt.Stringer.
func (l *Lane) String() string {
	return fmt.Sprintf(`lane %d (group %d, index %d)`, l.ID(), l.group, l.index)
}
