package table

// Signal tells the driver the cheapest redraw that reflects an operation.
type Signal int

const (
	None       Signal = iota // nothing changed on screen
	MoveCursor               // only the cursor moved inside the window
	Rerender                 // the window changed, redraw the whole frame
	Command                  // the command line changed
	Reset                    // clear the screen and stop
)

func (s Signal) String() string {
	switch s {
	case None:
		return "None"
	case MoveCursor:
		return "MoveCursor"
	case Rerender:
		return "Rerender"
	case Command:
		return "Command"
	case Reset:
		return "Reset"
	}
	return "Signal(?)"
}
