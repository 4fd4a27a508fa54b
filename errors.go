package xlmedia

import (
	"errors"
	"fmt"
)

// ErrInvalidImageType is returned when a placement type is neither "image" nor "background".
var ErrInvalidImageType = errors.New("invalid image type")

// ErrNotFound is returned when an image reference is not registered with the workbook.
var ErrNotFound = errors.New("image not found")

// ErrMalformedRange is returned when a textual cell range cannot be decoded.
var ErrMalformedRange = errors.New("malformed range")

// ErrInvalidGeometry is returned when an anchor geometry does not match its editAs mode.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrSheetExists is returned when adding a worksheet whose name is already taken.
var ErrSheetExists = errors.New("sheet already exists")

// ErrDuplicateSheetImageID is returned when an import batch reuses a sheetImageId.
var ErrDuplicateSheetImageID = errors.New("duplicate sheet image id")

// PlacementError reports a failure while importing a single placement.
type PlacementError struct {
	Sheet        string
	SheetImageID string
	Err          error
}

func (e *PlacementError) Error() string {
	if e.SheetImageID == "" {
		return fmt.Sprintf("placement in sheet %q: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("placement %q in sheet %q: %v", e.SheetImageID, e.Sheet, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}
