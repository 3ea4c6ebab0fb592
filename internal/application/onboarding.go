package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"smartthingies/internal/domain"
)

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrStepOutOfOrder = errors.New("onboarding step out of order")
)

type OnboardingStep int

const (
	StepNamingHome OnboardingStep = iota
	StepSelectingRoom
	StepSelectingDevice
	StepDone
)

func (s OnboardingStep) String() string {
	switch s {
	case StepNamingHome:
		return "naming_home"
	case StepSelectingRoom:
		return "selecting_room"
	case StepSelectingDevice:
		return "selecting_device"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Onboarding walks a new user through naming a home, picking a room and adding a
// first device. Each step persists its choice before moving on so the next step
// reads it from storage. There is no way back and no cancel: an abandoned run
// leaves its draft values in storage until the next run overwrites them.
type Onboarding struct {
	auth     *AuthStore
	homes    HomeService
	editor   *DeviceEditor
	kv       KeyValueStore
	notifier Notifier
	logger   *slog.Logger

	mu   sync.Mutex
	step OnboardingStep
}

func NewOnboarding(
	auth *AuthStore,
	homes HomeService,
	editor *DeviceEditor,
	kv KeyValueStore,
	notifier Notifier,
	logger *slog.Logger,
) *Onboarding {
	return &Onboarding{
		auth:     auth,
		homes:    homes,
		editor:   editor,
		kv:       kv,
		notifier: notifier,
		logger:   logger.With("flow", "onboarding"),
		step:     StepNamingHome,
	}
}

func (o *Onboarding) Step() OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *Onboarding) NameHome(ctx context.Context, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.expect(StepNamingHome); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		err := &domain.ValidationError{Field: "home_name", Reason: "Please enter a name for your home."}
		notify(ctx, o.notifier, o.logger, err.Reason)
		return err
	}

	user, ok := o.auth.User()
	if !ok {
		return ErrNotSignedIn
	}

	homeID, err := o.homes.CreateHome(ctx, user.ID, name)
	if err != nil {
		o.logger.Error("creating home", "error", err)
		notify(ctx, o.notifier, o.logger, "Something went wrong. Please try again.")
		return err
	}

	if err := o.kv.Set(ctx, KeyHomeID, strconv.Itoa(homeID)); err != nil {
		return o.persistFailed(ctx, KeyHomeID, err)
	}
	if err := o.kv.Set(ctx, KeyHomeName, name); err != nil {
		return o.persistFailed(ctx, KeyHomeName, err)
	}

	o.logger.Info("home created", "home_id", homeID)
	o.step = StepSelectingRoom
	return nil
}

func (o *Onboarding) SelectRoom(ctx context.Context, roomName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.expect(StepSelectingRoom); err != nil {
		return err
	}

	room, err := domain.ParseRoom(roomName)
	if err != nil {
		notify(ctx, o.notifier, o.logger, userMessage(err))
		return err
	}

	if err := o.kv.Set(ctx, KeySelectedRoom, room.Name); err != nil {
		return o.persistFailed(ctx, KeySelectedRoom, err)
	}

	o.step = StepSelectingDevice
	return nil
}

// SelectDevice creates the first device in the room chosen by SelectRoom, as read
// back from storage.
func (o *Onboarding) SelectDevice(ctx context.Context, typeName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.expect(StepSelectingDevice); err != nil {
		return err
	}

	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		err := &domain.ValidationError{Field: "device", Reason: "Please select a device before continuing."}
		notify(ctx, o.notifier, o.logger, err.Reason)
		return err
	}

	if err := o.kv.Set(ctx, KeySelectedDeviceType, typeName); err != nil {
		o.logger.Warn("persisting selected device type", "error", err)
	}

	room, _, err := o.kv.Get(ctx, KeySelectedRoom)
	if err != nil {
		o.logger.Warn("reading selected room", "error", err)
	}

	if err := o.editor.Create(ctx, typeName, typeName, room); err != nil {
		return err
	}

	o.step = StepDone
	return nil
}

// Draft reads the values persisted by the steps so far.
func (o *Onboarding) Draft(ctx context.Context) (domain.SetupDraft, error) {
	var draft domain.SetupDraft
	fields := []struct {
		key string
		dst *string
	}{
		{KeyHomeID, &draft.HomeID},
		{KeyHomeName, &draft.HomeName},
		{KeySelectedRoom, &draft.SelectedRoom},
		{KeySelectedDeviceType, &draft.SelectedDeviceType},
	}

	for _, f := range fields {
		v, _, err := o.kv.Get(ctx, f.key)
		if err != nil {
			return draft, fmt.Errorf("reading draft: %w", err)
		}
		*f.dst = v
	}
	return draft, nil
}

func (o *Onboarding) expect(step OnboardingStep) error {
	if o.step != step {
		return fmt.Errorf("%w: at %s, wanted %s", ErrStepOutOfOrder, o.step, step)
	}
	return nil
}

func (o *Onboarding) persistFailed(ctx context.Context, key string, err error) error {
	o.logger.Error("persisting onboarding choice", "key", key, "error", err)
	notify(ctx, o.notifier, o.logger, "Something went wrong. Please try again.")
	return fmt.Errorf("saving %s: %w", key, err)
}
