//go:build rp2040

// Package pico drives a BitDogLab RP2040 board with TinyGo: the same roles
// as the Raspberry Pi build, on the microcontroller's own peripherals.
package pico

import "machine"

// BitDogLab wiring.
const (
	JoystickX  = machine.GPIO26 // ADC0
	JoystickY  = machine.GPIO27 // ADC1
	StylePin   = machine.GPIO22 // joystick push button
	TogglePin  = machine.GPIO5  // button A
	RedPin     = machine.GPIO13 // PWM6 B
	BluePin    = machine.GPIO12 // PWM6 A
	ConfirmPin = machine.GPIO11 // green channel of the RGB LED
	SDAPin     = machine.GPIO14 // I2C1
	SCLPin     = machine.GPIO15
)

// DisplayAddress is the SSD1306 address on I2C1.
const DisplayAddress = 0x3C
