package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes bounds the size of a configuration file.
const MaxConfigFileBytes = 64 * 1024

// ADC and display implementations.
const (
	ADCMCP3208     = "mcp3208"
	ADCMock        = "mock"
	DisplaySSD1306 = "ssd1306"
	DisplayMock    = "mock"
)

// pwmPins are the BCM pins routed to a hardware PWM channel.
var pwmPins = []int{12, 13, 18, 19}

// Pins taken by the buses when they are in use.
var (
	spi0Pins = []int{7, 8, 9, 10, 11}
	i2c1Pins = []int{2, 3}
)

// ButtonsConfig describes the two push buttons (BCM numbering).
type ButtonsConfig struct {
	StylePin  int   `yaml:"style_pin"`  // cycles the border style, toggles the confirm LED (default 17)
	TogglePin int   `yaml:"toggle_pin"` // enables/disables the outputs (default 27)
	PullUp    *bool `yaml:"pull_up"`    // enable the internal pull-up (default true); false for an external resistor
}

// OutputsConfig describes the LEDs.
type OutputsConfig struct {
	RedPin     int `yaml:"red_pin"`     // PWM, follows the X axis (default 12)
	BluePin    int `yaml:"blue_pin"`    // PWM, follows the Y axis (default 13)
	ConfirmPin int `yaml:"confirm_pin"` // plain output, mirrors the indicator. 0 = not used.
	PWMFreqHz  int `yaml:"pwm_freq_hz"` // default 1000
}

// ADCConfig describes the analog front end of the joystick.
// Type selects a concrete implementation ("mcp3208" or "mock").
type ADCConfig struct {
	Type          string `yaml:"type"`
	SPIChipSelect int    `yaml:"spi_chip_select"` // CE0 or CE1
	XChannel      int    `yaml:"x_channel"`       // MCP3208 input 0-7
	YChannel      int    `yaml:"y_channel"`
	SPISpeedHz    int    `yaml:"spi_speed_hz"` // default 1 MHz
}

// DisplayConfig describes the OLED panel.
type DisplayConfig struct {
	Type    string `yaml:"type"`    // "ssd1306" (default) or "mock"
	I2CBus  string `yaml:"i2c_bus"` // periph bus name, "" = first bus
	Address int    `yaml:"address"` // 0x3C (default) or 0x3D
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	WebPort    int  `yaml:"web_port"`    // diagnostic mirror port, 0 = disabled
}

// Config aggregates all application configuration.
type Config struct {
	Buttons  ButtonsConfig  `yaml:"buttons"`
	Outputs  OutputsConfig  `yaml:"outputs"`
	ADC      ADCConfig      `yaml:"adc"`
	Display  DisplayConfig  `yaml:"display"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath accepts only .yaml files located directly in a
// directory named "configs", without any ".." component.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain '..'", path)
		}
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config path %q must have a .yaml extension", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	if err := ValidateConfigPath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file is %d bytes, max %d", info.Size(), MaxConfigFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.ADC.Type == "" {
		return errors.New("adc.type is required")
	}
	if c.ADC.SPISpeedHz <= 0 {
		c.ADC.SPISpeedHz = 1_000_000 // well under the 2 MHz the MCP3208 takes at 5V
	}
	if c.Display.Type == "" {
		c.Display.Type = DisplaySSD1306
	}
	if c.Display.Address == 0 {
		c.Display.Address = 0x3C
	}
	if c.Buttons.StylePin == 0 {
		c.Buttons.StylePin = 17
	}
	if c.Buttons.TogglePin == 0 {
		c.Buttons.TogglePin = 27
	}
	if c.Outputs.RedPin == 0 {
		c.Outputs.RedPin = 12
	}
	if c.Outputs.BluePin == 0 {
		c.Outputs.BluePin = 13
	}
	if c.Outputs.PWMFreqHz <= 0 {
		c.Outputs.PWMFreqHz = 1000
	}
	return nil
}

func (c *Config) validate() error {
	switch c.ADC.Type {
	case ADCMock:
	case ADCMCP3208:
		if c.Defaults.MockGPIO {
			return errors.New("adc.type mcp3208 needs the real GPIO driver (mock_gpio: false)")
		}
		if c.ADC.XChannel < 0 || c.ADC.XChannel > 7 || c.ADC.YChannel < 0 || c.ADC.YChannel > 7 {
			return fmt.Errorf("adc channels must be between 0 and 7, got x=%d y=%d", c.ADC.XChannel, c.ADC.YChannel)
		}
		if c.ADC.XChannel == c.ADC.YChannel {
			return fmt.Errorf("adc.x_channel and adc.y_channel must differ, both are %d", c.ADC.XChannel)
		}
		if c.ADC.SPIChipSelect != 0 && c.ADC.SPIChipSelect != 1 {
			return fmt.Errorf("adc.spi_chip_select must be 0 or 1, got %d", c.ADC.SPIChipSelect)
		}
	default:
		return fmt.Errorf("unknown adc.type %q", c.ADC.Type)
	}

	switch c.Display.Type {
	case DisplaySSD1306, DisplayMock:
	default:
		return fmt.Errorf("unknown display.type %q", c.Display.Type)
	}
	if c.Display.Address != 0x3C && c.Display.Address != 0x3D {
		return fmt.Errorf("display.address must be 0x3C or 0x3D, got 0x%02X", c.Display.Address)
	}

	pins := map[string]int{
		"buttons.style_pin":  c.Buttons.StylePin,
		"buttons.toggle_pin": c.Buttons.TogglePin,
		"outputs.red_pin":    c.Outputs.RedPin,
		"outputs.blue_pin":   c.Outputs.BluePin,
	}
	if c.Outputs.ConfirmPin != 0 {
		pins["outputs.confirm_pin"] = c.Outputs.ConfirmPin
	}
	seen := make(map[int]string, len(pins))
	for _, name := range slices.Sorted(maps.Keys(pins)) {
		pin := pins[name]
		if pin < 1 || pin > 27 {
			return fmt.Errorf("%s must be a BCM pin between 1 and 27, got %d", name, pin)
		}
		if c.ADC.Type == ADCMCP3208 && slices.Contains(spi0Pins, pin) {
			return fmt.Errorf("%s: pin %d is used by SPI0", name, pin)
		}
		if c.Display.Type == DisplaySSD1306 && slices.Contains(i2c1Pins, pin) {
			return fmt.Errorf("%s: pin %d is used by I2C1", name, pin)
		}
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("%s and %s both use pin %d", other, name, pin)
		}
		seen[pin] = name
	}
	if !c.Defaults.MockGPIO {
		for _, pin := range []int{c.Outputs.RedPin, c.Outputs.BluePin} {
			if !slices.Contains(pwmPins, pin) {
				return fmt.Errorf("pin %d has no hardware PWM (use one of %v)", pin, pwmPins)
			}
		}
	}

	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	if c.Defaults.WebPort < 0 || c.Defaults.WebPort > 65535 {
		return fmt.Errorf("web_port must be between 0 and 65535, got %d", c.Defaults.WebPort)
	}
	return nil
}

// ButtonsPullUp reports whether the internal pull-up of the button pins is
// enabled. Buttons always short the pin to GND, so pressed reads LOW either way.
func (c *Config) ButtonsPullUp() bool {
	return c.Buttons.PullUp == nil || *c.Buttons.PullUp
}

// DisplayAddress returns the I2C address of the panel.
func (c *Config) DisplayAddress() uint16 {
	return uint16(c.Display.Address)
}

// UseMockADC reports whether the joystick is simulated.
func (c *Config) UseMockADC() bool {
	return c.ADC.Type == ADCMock
}

// UseMockDisplay reports whether frames go to the log transport.
func (c *Config) UseMockDisplay() bool {
	return c.Display.Type == DisplayMock
}
