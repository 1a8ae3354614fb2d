package view

import "fmt"

const (
	zoneControlPrefix = "control-"

	zoneDialogQuitStay   = "dialog-quit-stay"
	zoneDialogQuitAccept = "dialog-quit-accept"
	zoneDialogError      = "dialog-error-close"
)

func zoneDialogSlot(index int) string {
	return fmt.Sprintf("dialog-slot-%d", index)
}
