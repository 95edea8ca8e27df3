package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OTP flow metrics. Defined in a standalone package so both the application
// service and the HTTP layer can increment them without import cycles.
var (
	OTPIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_issued_total",
		Help: "OTP codes generated and stored",
	})

	OTPVerifyAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verify_attempts_total",
		Help: "Verification attempts by outcome",
	}, []string{"result"}) // ok | not_found | mismatch

	OTPDeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_delivery_failures_total",
		Help: "Outbound email dispatch failures",
	})
)

// Register registers the OTP metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{OTPIssued, OTPVerifyAttempts, OTPDeliveryFailures} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
