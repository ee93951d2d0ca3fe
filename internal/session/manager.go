// Package session orchestrates the rental lifecycle: opening a session on a
// station, attaching and detaching controllers mid-session, and closing with
// final billing. All state flips go through the store's transactional
// operations; this package owns validation, pricing and side effects.
package session

import (
	"context"
	"log"
	"time"

	"gamelounge-backend/config"
	"gamelounge-backend/internal/fault"
	"gamelounge-backend/internal/model"
	"gamelounge-backend/internal/pricing"
	"gamelounge-backend/internal/store"
)

// PowerSignaler turns a station's display on or off. Calls are best-effort:
// a failure is logged and surfaced as a warning, never as an operation error.
type PowerSignaler interface {
	PowerOn(ctx context.Context, location string) error
	PowerOff(ctx context.Context, location string) error
}

// AvailabilityNotifier is told when a station returns to the available pool.
type AvailabilityNotifier interface {
	Dispatch(stationID int64)
}

// Manager runs the session state machine.
type Manager struct {
	cfg      *config.Config
	store    store.Store
	power    PowerSignaler
	notifier AvailabilityNotifier
}

// NewManager creates a lifecycle manager. power and notifier may be nil, in
// which case the corresponding side effects are skipped.
func NewManager(cfg *config.Config, s store.Store, power PowerSignaler, notifier AvailabilityNotifier) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    s,
		power:    power,
		notifier: notifier,
	}
}

// StartRequest carries the inputs for opening a session.
type StartRequest struct {
	StationID     int64   `json:"station_id"`
	UserID        int64   `json:"user_id"`
	GameID        *int64  `json:"game_id"`
	CreatedBy     int64   `json:"created_by"`
	ControllerIDs []int64 `json:"controller_ids"`
}

// View is the denormalized session snapshot returned to callers.
type View struct {
	Session     model.Session      `json:"session"`
	UserName    string             `json:"user_name"`
	GameName    string             `json:"game_name,omitempty"`
	Controllers []model.Controller `json:"controllers"`
	// LiveCost is the running display cost as of the view's assembly. It is
	// never persisted; billing truncates to whole minutes only at close.
	LiveCost float64 `json:"live_cost"`
	// PowerWarning is set when the display power signal failed. The session
	// itself succeeded; billing never depends on display hardware.
	PowerWarning string `json:"power_warning,omitempty"`
}

// opCtx bounds one persistence operation.
func (m *Manager) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.Database.OpTimeout)
}

// StartSession validates the request, prices the session, and atomically
// reserves the station plus every requested controller. Either all state
// flips persist or none do.
func (m *Manager) StartSession(ctx context.Context, req StartRequest) (*View, error) {
	if req.StationID <= 0 || req.UserID <= 0 {
		return nil, fault.Invalidf("station_id and user_id must be positive")
	}
	if req.GameID != nil && *req.GameID <= 0 {
		return nil, fault.Invalidf("game_id must be positive when given")
	}
	if req.GameID == nil && m.cfg.Billing.RequireGame {
		return nil, fault.Invalidf("a game is required to start a session")
	}
	if len(req.ControllerIDs) > m.cfg.Billing.MaxControllers {
		return nil, fault.Conflictf("controller", "at most %d controllers per session", m.cfg.Billing.MaxControllers)
	}
	seen := make(map[int64]bool, len(req.ControllerIDs))
	for _, id := range req.ControllerIDs {
		if id <= 0 {
			return nil, fault.Invalidf("controller ids must be positive")
		}
		if seen[id] {
			return nil, fault.Invalidf("controller %d requested twice", id)
		}
		seen[id] = true
	}

	octx, cancel := m.opCtx(ctx)
	defer cancel()

	station, err := m.store.GetStation(octx, req.StationID)
	if err != nil {
		return nil, err
	}
	if station.Status != model.StatusAvailable {
		return nil, fault.Conflictf("station", "station %d is %s", station.ID, station.Status)
	}

	user, err := m.store.GetUser(octx, req.UserID)
	if err != nil {
		return nil, err
	}

	var game *model.Game
	var gameRate float64
	if req.GameID != nil {
		game, err = m.store.GetGame(octx, *req.GameID)
		if err != nil {
			return nil, err
		}
		if !game.IsActive {
			return nil, fault.Conflictf("game", "game %d is not active", game.ID)
		}
		if !game.SupportsDevice(station.DeviceType) {
			return nil, fault.Conflictf("game", "game %d does not support device type %s", game.ID, station.DeviceType)
		}
		gameRate = game.PricePerMinute
	}

	controllers, err := m.store.GetControllers(octx, req.ControllerIDs)
	if err != nil {
		return nil, err
	}
	rates := make([]float64, len(controllers))
	for i, c := range controllers {
		if c.Status != model.StatusAvailable {
			return nil, fault.Conflictf("controller", "controller %d is %s", c.ID, c.Status)
		}
		rates[i] = c.PricePerMinute
	}

	discount, err := m.store.DiscountRate(octx, user.MembershipType, m.cfg.Billing.DiscountType)
	if err != nil {
		return nil, err
	}
	discount = pricing.ClampRate(discount)

	base := pricing.Cents(pricing.BasePrice(gameRate, rates))
	final := pricing.Cents(pricing.FinalPrice(base, discount))

	sess := model.Session{
		StationID:      station.ID,
		UserID:         user.ID,
		GameID:         req.GameID,
		CreatedBy:      req.CreatedBy,
		MembershipType: user.MembershipType,
		StartTime:      time.Now().UTC(),
		BasePrice:      base,
		DiscountRate:   discount,
		FinalPrice:     final,
	}

	if err := m.store.OpenSession(octx, &sess, controllers); err != nil {
		return nil, err
	}
	for i := range controllers {
		controllers[i].Status = model.StatusInUse
	}

	view := m.assembleView(ctx, &sess, user, game, controllers)
	view.PowerWarning = m.signalPower(station.Location, true)
	return view, nil
}

// AttachController adds one controller to an open session and recomputes the
// session's per-minute prices from the current attachment set.
func (m *Manager) AttachController(ctx context.Context, sessionID, controllerID int64) (*View, error) {
	if sessionID <= 0 || controllerID <= 0 {
		return nil, fault.Invalidf("session_id and controller_id must be positive")
	}

	octx, cancel := m.opCtx(ctx)
	defer cancel()

	sess, err := m.store.GetSession(octx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active() {
		return nil, fault.Conflictf("session", "session %d is closed", sess.ID)
	}
	if len(sess.Attachments) >= m.cfg.Billing.MaxControllers {
		return nil, fault.Conflictf("controller", "session %d already holds %d controllers", sess.ID, len(sess.Attachments))
	}

	ctrl, err := m.store.GetController(octx, controllerID)
	if err != nil {
		return nil, err
	}
	if ctrl.Status != model.StatusAvailable {
		return nil, fault.Conflictf("controller", "controller %d is %s", ctrl.ID, ctrl.Status)
	}

	next := append(m.attachedIDs(sess), controllerID)
	base, err := m.recomputeBase(octx, sess, next)
	if err != nil {
		return nil, err
	}
	final := pricing.Cents(pricing.FinalPrice(base, sess.DiscountRate))

	position := 0
	for _, att := range sess.Attachments {
		if att.Position >= position {
			position = att.Position + 1
		}
	}

	if err := m.store.AttachController(octx, sess.ID, ctrl, position, base, final); err != nil {
		return nil, err
	}
	return m.refreshView(ctx, sess.ID)
}

// DetachController removes one controller from an open session and recomputes
// the session's per-minute prices from the remaining attachment set.
func (m *Manager) DetachController(ctx context.Context, sessionID, controllerID int64) (*View, error) {
	if sessionID <= 0 || controllerID <= 0 {
		return nil, fault.Invalidf("session_id and controller_id must be positive")
	}

	octx, cancel := m.opCtx(ctx)
	defer cancel()

	sess, err := m.store.GetSession(octx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active() {
		return nil, fault.Conflictf("session", "session %d is closed", sess.ID)
	}

	attached := false
	remaining := make([]int64, 0, len(sess.Attachments))
	for _, att := range sess.Attachments {
		if att.ControllerID == controllerID {
			attached = true
			continue
		}
		remaining = append(remaining, att.ControllerID)
	}
	if !attached {
		return nil, fault.Conflictf("controller", "controller %d is not attached to session %d", controllerID, sess.ID)
	}

	base, err := m.recomputeBase(octx, sess, remaining)
	if err != nil {
		return nil, err
	}
	final := pricing.Cents(pricing.FinalPrice(base, sess.DiscountRate))

	if err := m.store.DetachController(octx, sess.ID, controllerID, base, final); err != nil {
		return nil, err
	}
	return m.refreshView(ctx, sess.ID)
}

// EndSession closes the station's active session: stamps the end time,
// bills whole elapsed minutes, and releases the station and its controllers.
// A station with no active session is a no-op success (nil view), so
// duplicate close requests are harmless.
func (m *Manager) EndSession(ctx context.Context, stationID int64) (*View, error) {
	if stationID <= 0 {
		return nil, fault.Invalidf("station_id must be positive")
	}

	octx, cancel := m.opCtx(ctx)
	defer cancel()

	station, err := m.store.GetStation(octx, stationID)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.ActiveSessionForStation(octx, stationID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	total := pricing.TotalAmount(sess.StartTime, now, sess.FinalPrice)

	if err := m.store.CloseSession(octx, sess, now, total); err != nil {
		return nil, err
	}
	sess.EndTime = &now
	sess.TotalAmount = &total

	if m.notifier != nil {
		m.notifier.Dispatch(stationID)
	}

	view, err := m.refreshView(ctx, sess.ID)
	if err != nil {
		// The close committed; a failed read-back must not look like a
		// failed close.
		log.Printf("Warning: could not reload closed session %d: %v", sess.ID, err)
		view = &View{Session: *sess}
	}
	view.PowerWarning = m.signalPower(station.Location, false)
	return view, nil
}

// GetActiveSession returns the station's active session with a live display
// cost, or nil when the station is idle. Absence is not an error.
func (m *Manager) GetActiveSession(ctx context.Context, stationID int64) (*View, error) {
	if stationID <= 0 {
		return nil, fault.Invalidf("station_id must be positive")
	}

	octx, cancel := m.opCtx(ctx)
	defer cancel()

	sess, err := m.store.ActiveSessionForStation(octx, stationID)
	if err != nil || sess == nil {
		return nil, err
	}
	return m.refreshView(ctx, sess.ID)
}

// recomputeBase prices the session from live catalog rates for the given
// attachment set.
func (m *Manager) recomputeBase(ctx context.Context, sess *model.Session, controllerIDs []int64) (float64, error) {
	var gameRate float64
	if sess.GameID != nil {
		game, err := m.store.GetGame(ctx, *sess.GameID)
		if err != nil {
			return 0, err
		}
		gameRate = game.PricePerMinute
	}

	controllers, err := m.store.GetControllers(ctx, controllerIDs)
	if err != nil {
		return 0, err
	}
	rates := make([]float64, len(controllers))
	for i, c := range controllers {
		rates[i] = c.PricePerMinute
	}
	return pricing.Cents(pricing.BasePrice(gameRate, rates)), nil
}

func (m *Manager) attachedIDs(sess *model.Session) []int64 {
	ids := make([]int64, len(sess.Attachments))
	for i, att := range sess.Attachments {
		ids[i] = att.ControllerID
	}
	return ids
}

// refreshView reloads the session and its referenced entities for display.
func (m *Manager) refreshView(ctx context.Context, sessionID int64) (*View, error) {
	octx, cancel := m.opCtx(ctx)
	defer cancel()

	sess, err := m.store.GetSession(octx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := m.store.GetUser(octx, sess.UserID)
	if err != nil {
		return nil, err
	}

	var game *model.Game
	if sess.GameID != nil {
		// A deleted game must not corrupt the historical record; show the
		// session without a game name instead.
		if g, gerr := m.store.GetGame(octx, *sess.GameID); gerr == nil {
			game = g
		}
	}

	controllers, err := m.store.GetControllers(octx, m.attachedIDs(sess))
	if err != nil {
		return nil, err
	}

	return m.assembleView(ctx, sess, user, game, controllers), nil
}

func (m *Manager) assembleView(_ context.Context, sess *model.Session, user *model.User, game *model.Game, controllers []model.Controller) *View {
	view := &View{
		Session:     *sess,
		UserName:    user.Name,
		Controllers: controllers,
	}
	if game != nil {
		view.GameName = game.Name
	}
	asOf := time.Now().UTC()
	if sess.EndTime != nil {
		asOf = *sess.EndTime
	}
	view.LiveCost = pricing.Cents(pricing.ElapsedCost(sess.StartTime, asOf, sess.FinalPrice))
	return view
}

// signalPower calls the power sidecar with its own short deadline, after the
// billing transaction has already committed. Returns a warning string on
// failure; never an error.
func (m *Manager) signalPower(location string, on bool) string {
	if m.power == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Power.Timeout)
	defer cancel()

	var err error
	action := "on"
	if on {
		err = m.power.PowerOn(ctx, location)
	} else {
		action = "off"
		err = m.power.PowerOff(ctx, location)
	}
	if err != nil {
		log.Printf("Warning: power %s signal for %q failed: %v", action, location, err)
		return "display power " + action + " signal failed"
	}
	return ""
}
