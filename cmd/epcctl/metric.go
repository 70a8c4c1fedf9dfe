package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/tyan-boot/wdepc/pkg/epc"
)

type metricCollector struct {
	m []prometheus.Metric
}

func (mc *metricCollector) Collect(c chan<- prometheus.Metric) {
	for _, m := range mc.m {
		c <- m
	}
}

func (mc *metricCollector) Describe(c chan<- *prometheus.Desc) {
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func outputMetrics(w io.Writer, state Devices) error {
	var (
		mDriveInfo = prometheus.NewDesc(
			"epc_drive_info",
			"Info metric regarding the detected drives",
			[]string{"device", "model", "serial", "firmware"}, nil,
		)
		mEPCSupported = prometheus.NewDesc(
			"epc_supported",
			"Boolean describing whether a drive supports the Extended Power Conditions feature set",
			[]string{"device"}, nil,
		)
		mEPCEnabled = prometheus.NewDesc(
			"epc_enabled",
			"Boolean describing whether the Extended Power Conditions feature set is enabled",
			[]string{"device"}, nil,
		)
		mAPMEnabled = prometheus.NewDesc(
			"epc_apm_enabled",
			"Boolean describing whether the Advanced Power Management feature set is enabled",
			[]string{"device"}, nil,
		)
		mPowerMode = prometheus.NewDesc(
			"epc_power_mode",
			"Current power mode as reported by CHECK POWER MODE",
			[]string{"device", "mode"}, nil,
		)
		mConditionEnabled = prometheus.NewDesc(
			"epc_condition_enabled",
			"Boolean describing whether a supported power condition is currently enabled",
			[]string{"device", "condition"}, nil,
		)
		mConditionTimer = prometheus.NewDesc(
			"epc_condition_timer_seconds",
			"Power condition timer; the timer label is one of current, saved or default",
			[]string{"device", "condition", "timer"}, nil,
		)
	)
	mc := &metricCollector{}
	for _, s := range state {
		mc.m = append(mc.m,
			prometheus.MustNewConstMetric(mDriveInfo, prometheus.GaugeValue, 1,
				s.Device, s.Identity.Model, s.Identity.SerialNumber, s.Identity.Firmware))
		mc.m = append(mc.m,
			prometheus.MustNewConstMetric(mEPCSupported, prometheus.GaugeValue, boolValue(s.Features.EPCSupported), s.Device),
			prometheus.MustNewConstMetric(mEPCEnabled, prometheus.GaugeValue, boolValue(s.Features.EPCEnabled), s.Device),
			prometheus.MustNewConstMetric(mAPMEnabled, prometheus.GaugeValue, boolValue(s.Features.APMEnabled), s.Device),
			prometheus.MustNewConstMetric(mPowerMode, prometheus.GaugeValue, 1, s.Device, s.Mode.String()))

		// Only drives with a readable Power Conditions log get per-condition metrics
		if s.Setting == nil {
			continue
		}

		for _, c := range epc.Conditions {
			d := s.Setting.Descriptor(c)
			if !d.Supported {
				continue
			}
			mc.m = append(mc.m,
				prometheus.MustNewConstMetric(mConditionEnabled, prometheus.GaugeValue, boolValue(d.CurrentEnable), s.Device, c.String()),
				prometheus.MustNewConstMetric(mConditionTimer, prometheus.GaugeValue,
					epc.TimerDuration(d.CurrentTimer).Seconds(), s.Device, c.String(), "current"),
				prometheus.MustNewConstMetric(mConditionTimer, prometheus.GaugeValue,
					epc.TimerDuration(d.SavedTimer).Seconds(), s.Device, c.String(), "saved"),
				prometheus.MustNewConstMetric(mConditionTimer, prometheus.GaugeValue,
					epc.TimerDuration(d.DefaultTimer).Seconds(), s.Device, c.String(), "default"))
		}
	}

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(mc)

	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to serialize metrics: %w", err)
		}
	}
	return nil
}
