package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"exchange-backend/internal/database"
	"exchange-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// Postgres jsonb rejects the empty string, use the JSON null literal
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverses the mutation a log describes: deletes what a create made,
// restores what an update overwrote, recreates what a delete removed.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this action has already been undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.BeforeData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action type cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "exchange_transaction":
		return database.DB.Delete(&models.ExchangeTransaction{}, "id = ?", entityID).Error
	case "credit_transaction":
		return database.DB.Delete(&models.CreditTransaction{}, "id = ?", entityID).Error
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "money_receiving":
		return database.DB.Delete(&models.MoneyReceiving{}, "id = ?", entityID).Error
	case "cash_count_record":
		return database.DB.Delete(&models.CashCountRecord{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "exchange_transaction":
		var tx models.ExchangeTransaction
		if err := json.Unmarshal([]byte(dataJSON), &tx); err != nil {
			return err
		}
		tx.ID = 0
		return database.DB.Create(&tx).Error

	case "credit_transaction":
		var cr models.CreditTransaction
		if err := json.Unmarshal([]byte(dataJSON), &cr); err != nil {
			return err
		}
		cr.ID = 0
		return database.DB.Create(&cr).Error

	case "expense":
		var exp models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		exp.ID = 0
		return database.DB.Create(&exp).Error

	case "money_receiving":
		var rec models.MoneyReceiving
		if err := json.Unmarshal([]byte(dataJSON), &rec); err != nil {
			return err
		}
		rec.ID = 0
		return database.DB.Create(&rec).Error

	case "cash_count_record":
		var cc models.CashCountRecord
		if err := json.Unmarshal([]byte(dataJSON), &cc); err != nil {
			return err
		}
		cc.ID = 0
		return database.DB.Create(&cc).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "exchange_transaction":
		var tx models.ExchangeTransaction
		if err := json.Unmarshal([]byte(dataJSON), &tx); err != nil {
			return err
		}
		return database.DB.Model(&models.ExchangeTransaction{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"type":          tx.Type,
			"from_currency": tx.FromCurrency,
			"from_amount":   tx.FromAmount,
			"to_currency":   tx.ToCurrency,
			"to_amount":     tx.ToAmount,
			"rate":          tx.Rate,
			"method":        tx.Method,
			"customer_id":   tx.CustomerID,
			"staff_id":      tx.StaffID,
			"timestamp":     tx.Timestamp,
		}).Error

	case "credit_transaction":
		var cr models.CreditTransaction
		if err := json.Unmarshal([]byte(dataJSON), &cr); err != nil {
			return err
		}
		return database.DB.Model(&models.CreditTransaction{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"type":        cr.Type,
			"amount":      cr.Amount,
			"currency":    cr.Currency,
			"customer_id": cr.CustomerID,
			"staff_id":    cr.StaffID,
			"timestamp":   cr.Timestamp,
			"description": cr.Description,
		}).Error

	case "expense":
		var exp models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"category_id": exp.CategoryID,
			"currency":    exp.Currency,
			"amount":      exp.Amount,
			"date":        exp.Date,
			"staff_id":    exp.StaffID,
			"description": exp.Description,
		}).Error

	case "money_receiving":
		var rec models.MoneyReceiving
		if err := json.Unmarshal([]byte(dataJSON), &rec); err != nil {
			return err
		}
		return database.DB.Model(&models.MoneyReceiving{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"amount":       rec.Amount,
			"currency":     rec.Currency,
			"method":       rec.Method,
			"is_confirmed": rec.IsConfirmed,
			"confirmed_by": rec.ConfirmedBy,
			"confirmed_at": rec.ConfirmedAt,
			"staff_id":     rec.StaffID,
			"timestamp":    rec.Timestamp,
			"description":  rec.Description,
		}).Error

	case "cash_count_record":
		var cc models.CashCountRecord
		if err := json.Unmarshal([]byte(dataJSON), &cc); err != nil {
			return err
		}
		return database.DB.Model(&models.CashCountRecord{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"staff_id":           cc.StaffID,
			"date":               cc.Date,
			"opening_npr":        cc.OpeningNpr,
			"opening_inr":        cc.OpeningInr,
			"opening_npr_denoms": cc.OpeningNprDenoms,
			"opening_inr_denoms": cc.OpeningInrDenoms,
			"closing_npr":        cc.ClosingNpr,
			"closing_inr":        cc.ClosingInr,
			"closing_npr_denoms": cc.ClosingNprDenoms,
			"closing_inr_denoms": cc.ClosingInrDenoms,
			"is_closed":          cc.IsClosed,
			"closed_at":          cc.ClosedAt,
			"notes":              cc.Notes,
		}).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}
