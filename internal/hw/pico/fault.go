package pico

import "time"

// ResetDelay lets the serial console drain before a fault restart.
const ResetDelay = time.Second

// Fail reports err once through print, waits ResetDelay, then calls reset.
// On the board reset is machine.CPUReset and never returns.
func Fail(err error, print func(string), sleep func(time.Duration), reset func()) {
	print("joypanel: " + err.Error())
	sleep(ResetDelay)
	reset()
}
