package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gamelounge-backend/internal/fault"
	"gamelounge-backend/internal/ledger"
	"gamelounge-backend/internal/model"
)

// Store defines the database operations the session lifecycle depends on.
// Plain CRUD for the catalog surface goes through DB() directly.
type Store interface {
	DB() *gorm.DB

	GetStation(ctx context.Context, id int64) (*model.Station, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetGame(ctx context.Context, id int64) (*model.Game, error)
	GetController(ctx context.Context, id int64) (*model.Controller, error)
	GetControllers(ctx context.Context, ids []int64) ([]model.Controller, error)
	GetSession(ctx context.Context, id int64) (*model.Session, error)

	// ActiveSessionForStation returns (nil, nil) when the station has no
	// open session; absence is not an error for this lookup.
	ActiveSessionForStation(ctx context.Context, stationID int64) (*model.Session, error)

	// DiscountRate returns the active configured rate for the pair, or 0
	// when no configuration exists. Unconfigured means "no discount".
	DiscountRate(ctx context.Context, membershipType, discountType string) (float64, error)

	OpenSession(ctx context.Context, sess *model.Session, controllers []model.Controller) error
	AttachController(ctx context.Context, sessionID int64, ctrl *model.Controller, position int, basePrice, finalPrice float64) error
	DetachController(ctx context.Context, sessionID, controllerID int64, basePrice, finalPrice float64) error
	CloseSession(ctx context.Context, sess *model.Session, endTime time.Time, totalAmount float64) error

	SetStationMaintenance(ctx context.Context, stationID int64, enter bool) error
	SetControllerMaintenance(ctx context.Context, controllerID int64, enter bool) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// wrapErr maps driver-level failures onto the fault taxonomy. The entity name
// feeds user-facing messages.
func wrapErr(err error, entity string, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fault.NotFoundf(entity, "%s %d not found", entity, id)
	case errors.Is(err, context.DeadlineExceeded):
		return fault.Timeoutf(entity, "persistence timed out for %s %d", entity, id)
	default:
		return fmt.Errorf("%s %d: %w", entity, id, err)
	}
}

func (s *gormStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	var st model.Station
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, wrapErr(err, "station", id)
	}
	return &st, nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrapErr(err, "user", id)
	}
	return &u, nil
}

func (s *gormStore) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	var g model.Game
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, wrapErr(err, "game", id)
	}
	return &g, nil
}

func (s *gormStore) GetController(ctx context.Context, id int64) (*model.Controller, error) {
	var c model.Controller
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrapErr(err, "controller", id)
	}
	return &c, nil
}

// GetControllers resolves a batch of controller ids, failing with NotFound if
// any id is missing. Order follows the requested ids.
func (s *gormStore) GetControllers(ctx context.Context, ids []int64) ([]model.Controller, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var controllers []model.Controller
	if err := s.db.WithContext(ctx).Find(&controllers, ids).Error; err != nil {
		return nil, wrapErr(err, "controller", 0)
	}
	byID := make(map[int64]model.Controller, len(controllers))
	for _, c := range controllers {
		byID[c.ID] = c
	}
	ordered := make([]model.Controller, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fault.NotFoundf("controller", "controller %d not found", id)
		}
		ordered = append(ordered, c)
	}
	return ordered, nil
}

func (s *gormStore) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	var sess model.Session
	err := s.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&sess, id).Error
	if err != nil {
		return nil, wrapErr(err, "session", id)
	}
	return &sess, nil
}

func (s *gormStore) ActiveSessionForStation(ctx context.Context, stationID int64) (*model.Session, error) {
	var sess model.Session
	err := s.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("station_id = ? AND end_time IS NULL", stationID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "session", stationID)
	}
	return &sess, nil
}

func (s *gormStore) DiscountRate(ctx context.Context, membershipType, discountType string) (float64, error) {
	var cfg model.DiscountConfig
	err := s.db.WithContext(ctx).
		Where("membership_type = ? AND discount_type = ? AND is_active = ?", membershipType, discountType, true).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapErr(err, "discount_config", 0)
	}
	return cfg.Rate, nil
}

// OpenSession creates the session row, reserves the station and every
// requested controller, and writes the attachment rows in one transaction.
// A conflict on any device rolls the whole thing back.
func (s *gormStore) OpenSession(ctx context.Context, sess *model.Session, controllers []model.Controller) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sess).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		if err := ledger.Reserve(tx, sess.StationID, sess.ID); err != nil {
			return err
		}

		for i, ctrl := range controllers {
			if err := ledger.ReserveController(tx, ctrl.ID); err != nil {
				return err
			}
			attachment := model.SessionController{
				SessionID:     sess.ID,
				ControllerID:  ctrl.ID,
				Position:      i,
				RatePerMinute: ctrl.PricePerMinute,
				AttachedAt:    sess.StartTime,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return fmt.Errorf("create attachment for controller %d: %w", ctrl.ID, err)
			}
		}
		return nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Timeoutf("session", "persistence timed out opening session on station %d", sess.StationID)
	}
	return err
}

// AttachController adds one controller to an open session and persists the
// recomputed prices as a single unit.
func (s *gormStore) AttachController(ctx context.Context, sessionID int64, ctrl *model.Controller, position int, basePrice, finalPrice float64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ledger.ReserveController(tx, ctrl.ID); err != nil {
			return err
		}

		attachment := model.SessionController{
			SessionID:     sessionID,
			ControllerID:  ctrl.ID,
			Position:      position,
			RatePerMinute: ctrl.PricePerMinute,
			AttachedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&attachment).Error; err != nil {
			return fmt.Errorf("create attachment for controller %d: %w", ctrl.ID, err)
		}

		return updateSessionPrices(tx, sessionID, basePrice, finalPrice)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Timeoutf("session", "persistence timed out attaching controller %d", ctrl.ID)
	}
	return err
}

// DetachController removes one controller from an open session and persists
// the recomputed prices as a single unit.
func (s *gormStore) DetachController(ctx context.Context, sessionID, controllerID int64, basePrice, finalPrice float64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("session_id = ? AND controller_id = ?", sessionID, controllerID).
			Delete(&model.SessionController{})
		if res.Error != nil {
			return fmt.Errorf("delete attachment for controller %d: %w", controllerID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fault.Conflictf("controller", "controller %d is not attached to session %d", controllerID, sessionID)
		}

		if err := ledger.ReleaseController(tx, controllerID); err != nil {
			return err
		}

		return updateSessionPrices(tx, sessionID, basePrice, finalPrice)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Timeoutf("session", "persistence timed out detaching controller %d", controllerID)
	}
	return err
}

// CloseSession stamps the end time and total, releases the station and every
// attached controller. The end_time IS NULL guard makes a double close a
// conflict here; the manager turns that into an idempotent no-op by checking
// for an active session first.
func (s *gormStore) CloseSession(ctx context.Context, sess *model.Session, endTime time.Time, totalAmount float64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Session{}).
			Where("id = ? AND end_time IS NULL", sess.ID).
			Updates(map[string]any{
				"end_time":     endTime,
				"total_amount": totalAmount,
			})
		if res.Error != nil {
			return fmt.Errorf("close session %d: %w", sess.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fault.Conflictf("session", "session %d is already closed", sess.ID)
		}

		if err := ledger.Release(tx, sess.StationID, sess.ID); err != nil {
			return err
		}

		for _, att := range sess.Attachments {
			if err := ledger.ReleaseController(tx, att.ControllerID); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Timeoutf("session", "persistence timed out closing session %d", sess.ID)
	}
	return err
}

func (s *gormStore) SetStationMaintenance(ctx context.Context, stationID int64, enter bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if enter {
			return ledger.StationToMaintenance(tx, stationID)
		}
		return ledger.BackFromMaintenance(tx, &model.Station{}, stationID)
	})
}

func (s *gormStore) SetControllerMaintenance(ctx context.Context, controllerID int64, enter bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if enter {
			return ledger.ControllerToMaintenance(tx, controllerID)
		}
		if err := ledger.BackFromMaintenance(tx, &model.Controller{}, controllerID); err != nil {
			return err
		}
		// Coming back from maintenance records the service timestamp.
		return tx.Model(&model.Controller{}).
			Where("id = ?", controllerID).
			Update("last_maintenance_at", time.Now().UTC()).Error
	})
}

func updateSessionPrices(tx *gorm.DB, sessionID int64, basePrice, finalPrice float64) error {
	res := tx.Model(&model.Session{}).
		Where("id = ? AND end_time IS NULL", sessionID).
		Updates(map[string]any{
			"base_price":  basePrice,
			"final_price": finalPrice,
		})
	if res.Error != nil {
		return fmt.Errorf("update session %d prices: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("session", "session %d is not active", sessionID)
	}
	return nil
}
