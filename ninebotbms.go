package ninebotbms

import (
	_ninebotbms "github.com/jonamat/go-ninebot-bms/internal/bms"
)

var NewBMS = _ninebotbms.NewBMS
var NewMonitor = _ninebotbms.NewMonitor
var ListPorts = _ninebotbms.ListPorts
var ChoosePort = _ninebotbms.ChoosePort

var WithTiming = _ninebotbms.WithTiming
var WithRender = _ninebotbms.WithRender
var WithLogger = _ninebotbms.WithLogger
var WithSnapshot = _ninebotbms.WithSnapshot

var DefaultTiming = _ninebotbms.DefaultTiming
var ErrNotConnected = _ninebotbms.ErrNotConnected

type BMS = _ninebotbms.BMS
type SerialConfig = _ninebotbms.SerialConfig
type Monitor = _ninebotbms.Monitor
type MonitorOption = _ninebotbms.MonitorOption
type Timing = _ninebotbms.Timing
type Port = _ninebotbms.Port
type PortInfo = _ninebotbms.PortInfo
