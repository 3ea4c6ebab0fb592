// Package cli is a line-oriented terminal front end for the client screens.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"smartthingies/internal/application"
	"smartthingies/internal/domain"
)

var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type Shell struct {
	app    *application.App
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	onboarding *application.Onboarding
	commands   map[string]command
	order      []string
}

func NewShell(app *application.App, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	s := &Shell{app: app, in: in, out: out, logger: logger}
	s.register()
	return s
}

func (s *Shell) register() {
	s.commands = make(map[string]command)
	add := func(name, usage, help string, run func(ctx context.Context, args []string) error) {
		s.commands[name] = command{usage: usage, help: help, run: run}
		s.order = append(s.order, name)
	}

	add("login", "login <email> <password> [remember]", "sign in", s.login)
	add("register", `register "<full name>" <email> <password>`, "create an account", s.registerUser)
	add("logout", "logout", "sign out", s.logout)
	add("whoami", "whoami", "show the profile", s.whoami)
	add("setup", `setup home|room|device "<value>"`, "first-run setup", s.setup)
	add("draft", "draft", "show saved setup choices", s.draft)
	add("dashboard", "dashboard", "devices of the selected room and lights", s.dashboard)
	add("room", `room "<name>"`, "select the dashboard room", s.room)
	add("toggle", "toggle <id>", "switch a device on or off", s.toggle)
	add("rule", "rule <id> on|off <HH:MM>", "attach an automation rule", s.rule)
	add("light", "light main|floor <0..1>", "set a light level", s.light)
	add("devices", "devices", "list every device", s.devices)
	add("refresh", "refresh", "refetch devices", s.refresh)
	add("search", "search [keyword]", "search devices", s.search)
	add("pick", `pick <n> "<room>" ["<name>"]`, "add search result n to a room", s.pick)
	add("add", `add "<name>" "<type>" "<room>"`, "add a device by hand", s.add)
	add("update", `update <id> [name="..."] [type="..."] [room="..."]`, "change a device", s.update)
	add("delete", "delete <id>", "remove a device", s.remove)
	add("notifications", "notifications", "maintenance reminders", s.notifications)
	add("help", "help", "this list", s.help)
	add("quit", "quit", "leave", func(context.Context, []string) error { return errQuit })
}

// Run reads commands until EOF, quit or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	if email := s.app.Session.RememberedEmail(ctx); email != "" {
		s.printf("Welcome back, %s. Type help for commands.\n", email)
	} else {
		s.printf("Type help for commands.\n")
	}

	scanner := bufio.NewScanner(s.in)
	for {
		s.printf("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.Exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printf("error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	cmd, ok := s.commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", args[0])
	}

	s.logger.Debug("command", "name", args[0])
	return cmd.run(ctx, args[1:])
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Shell) usage(name string) error {
	return fmt.Errorf("usage: %s", s.commands[name].usage)
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return s.usage("login")
	}
	remember := len(args) > 2 && args[2] == "remember"

	user, err := s.app.Session.Login(ctx, application.Credentials{Email: args[0], Password: args[1], Remember: remember})
	if err != nil {
		return err
	}
	s.printf("Signed in as %s.\n", displayName(user))
	return nil
}

func (s *Shell) registerUser(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return s.usage("register")
	}

	user, err := s.app.Session.Register(ctx, application.Registration{FullName: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}
	s.printf("Welcome, %s. Run setup home \"<name>\" to get started.\n", displayName(user))
	return nil
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	if err := s.app.Settings.Logout(ctx); err != nil {
		return err
	}
	s.onboarding = nil
	s.printf("Signed out.\n")
	return nil
}

func (s *Shell) whoami(_ context.Context, _ []string) error {
	p := s.app.Settings.Profile()
	s.printf("%s <%s>\n", p.Name, p.Email)
	return nil
}

func (s *Shell) setup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return s.usage("setup")
	}

	switch args[0] {
	case "home":
		if s.onboarding == nil || s.onboarding.Step() == application.StepDone {
			s.onboarding = s.app.NewOnboarding()
		}
		if err := s.onboarding.NameHome(ctx, args[1]); err != nil {
			return err
		}
		s.printf("Home saved. Pick a room: %s\n", strings.Join(roomNames(), ", "))
	case "room":
		if s.onboarding == nil {
			return application.ErrStepOutOfOrder
		}
		if err := s.onboarding.SelectRoom(ctx, args[1]); err != nil {
			return err
		}
		s.printf("Room saved. Pick a device: %s\n", strings.Join(typeNames(), ", "))
	case "device":
		if s.onboarding == nil {
			return application.ErrStepOutOfOrder
		}
		if err := s.onboarding.SelectDevice(ctx, args[1]); err != nil {
			return err
		}
		s.printf("Setup complete.\n")
	default:
		return s.usage("setup")
	}
	return nil
}

func (s *Shell) draft(ctx context.Context, _ []string) error {
	o := s.onboarding
	if o == nil {
		o = s.app.NewOnboarding()
	}
	d, err := o.Draft(ctx)
	if err != nil {
		return err
	}
	s.printf("home: %s (%s)\nroom: %s\ndevice: %s\n", orDash(d.HomeName), orDash(d.HomeID), orDash(d.SelectedRoom), orDash(d.SelectedDeviceType))
	return nil
}

func (s *Shell) dashboard(ctx context.Context, _ []string) error {
	if err := s.app.Dashboard.Focus(ctx); err != nil {
		return err
	}
	s.printDashboard()
	return nil
}

func (s *Shell) printDashboard() {
	s.printf("Room: %s\n", s.app.Dashboard.Room())
	cards := s.app.Dashboard.Cards()
	if len(cards) == 0 {
		s.printf("  no devices\n")
	}
	for _, c := range cards {
		s.printf("  [%d] %-20s %-15s %s\n", c.ID, c.Name, c.Type.Name, c.Status())
	}
	l := s.app.Dashboard.Lights()
	s.printf("Main light %.2f  Floor lamp %.2f\n", l.MainLight, l.FloorLamp)
}

func (s *Shell) room(_ context.Context, args []string) error {
	if len(args) != 1 {
		return s.usage("room")
	}
	if err := s.app.Dashboard.SelectRoom(args[0]); err != nil {
		return err
	}
	s.printDashboard()
	return nil
}

func (s *Shell) toggle(_ context.Context, args []string) error {
	if len(args) != 1 {
		return s.usage("toggle")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st := s.app.Dashboard.Toggle(id)
	s.printf("Device %d is %s.\n", id, onOff(st.IsOn))
	return nil
}

func (s *Shell) rule(_ context.Context, args []string) error {
	if len(args) != 3 {
		return s.usage("rule")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	rule := domain.AutomationRule{Type: domain.RuleType(args[1]), Time: args[2]}
	if err := s.app.Toggles.AddRule(id, rule); err != nil {
		return err
	}
	s.printf("Rule added: turn %s at %s.\n", rule.Type, rule.Time)
	return nil
}

func (s *Shell) light(_ context.Context, args []string) error {
	if len(args) != 2 {
		return s.usage("light")
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return &domain.ValidationError{Field: "level", Reason: "want a number between 0 and 1"}
	}

	switch args[0] {
	case "main":
		v = s.app.Dashboard.SetMainLight(v)
	case "floor":
		v = s.app.Dashboard.SetFloorLamp(v)
	default:
		return s.usage("light")
	}
	s.printf("%s light set to %.2f.\n", args[0], v)
	return nil
}

func (s *Shell) devices(ctx context.Context, _ []string) error {
	if err := s.app.List.Focus(ctx); err != nil {
		return err
	}
	s.printDevices()
	return nil
}

func (s *Shell) printDevices() {
	s.printf("%d devices\n", s.app.List.Count())
	for _, c := range s.app.List.Devices() {
		s.printf("  [%d] %-20s %-15s %s\n", c.ID, c.Name, c.Type.Name, c.RoomName)
	}
}

func (s *Shell) refresh(ctx context.Context, _ []string) error {
	if err := s.app.Devices.Refresh(ctx); err != nil {
		return err
	}
	s.printDevices()
	return nil
}

func (s *Shell) search(ctx context.Context, args []string) error {
	items, err := s.app.Search.Query(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.printf("%d found\n", s.app.Search.Count())
	for i, it := range items {
		if it.Manual {
			s.printf("  Device not found? add \"<name>\" \"<type>\" \"<room>\"\n")
			continue
		}
		s.printf("  %d. %-20s %-15s %s\n", i+1, it.Card.Name, it.Card.Type.Name, it.Card.RoomName)
	}
	return nil
}

func (s *Shell) pick(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return s.usage("pick")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return s.usage("pick")
	}
	item, err := s.app.Search.Pick(n - 1)
	if err != nil {
		return err
	}

	rename := ""
	if len(args) == 3 {
		rename = args[2]
	}
	return s.app.Search.ConfirmAdd(ctx, item, rename, args[1])
}

func (s *Shell) add(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return s.usage("add")
	}
	return s.app.Search.AddManual(ctx, args[0], args[1], args[2])
}

func (s *Shell) update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return s.usage("update")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var edit application.DeviceEdit
	for _, a := range args[1:] {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return s.usage("update")
		}
		v := value
		switch key {
		case "name":
			edit.Name = &v
		case "type":
			edit.TypeName = &v
		case "room":
			edit.RoomName = &v
		default:
			return s.usage("update")
		}
	}
	return s.app.Editor.Update(ctx, id, edit)
}

func (s *Shell) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return s.usage("delete")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return s.app.Editor.Delete(ctx, id)
}

func (s *Shell) notifications(_ context.Context, _ []string) error {
	for _, n := range s.app.Settings.Notifications() {
		s.printf("  %d. %s\n", n.ID, n.Message)
	}
	return nil
}

func (s *Shell) help(_ context.Context, _ []string) error {
	for _, name := range s.order {
		c := s.commands[name]
		s.printf("  %-48s %s\n", c.usage, c.help)
	}
	return nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not a device id", raw)}
	}
	return id, nil
}

func displayName(u domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func roomNames() []string {
	var names []string
	for _, r := range domain.Rooms() {
		names = append(names, r.Name)
	}
	return names
}

func typeNames() []string {
	var names []string
	for _, t := range domain.DeviceTypes() {
		if t.ID != domain.TypeUnknown {
			names = append(names, t.Name)
		}
	}
	return names
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
