package clock

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
)

// Field names of the GetTime response.
const (
	FieldHours        = "hours"
	FieldMinutes      = "minutes"
	FieldSeconds      = "seconds"
	FieldAlarmHours   = "alarm_hours"
	FieldAlarmMinutes = "alarm_minutes"
	FieldAlarmSeconds = "alarm_seconds"
	FieldAlarmsRaised = "alarms"
)

const (
	fieldCount = 7
	// maxExactFloat is the largest integer a JSON number carries exactly.
	maxExactFloat = 1 << 53
)

// errMissingField is returned when a response lacks a numeric field.
var errMissingField = errors.New("missing numeric field")

// Service abstracts the clock state the transport layer reads.
type Service interface {
	Status(ctx context.Context) domain.Status
}

// Server implements the ClockService gRPC API.
type Server struct {
	// service provides the running clock's state.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetTime returns the clock's last printed time, its alarm target and the alarm count.
func (s *Server) GetTime(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.service == nil {
		return nil, status.Error(codes.Unavailable, "clock is not running")
	}

	response, err := ToStruct(s.service.Status(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode clock status")
	}

	return response, nil
}

// ToStruct converts a domain status to its wire form.
func ToStruct(st domain.Status) (*structpb.Struct, error) {
	if st.Alarms > maxExactFloat {
		st.Alarms = maxExactFloat
	}

	return structpb.NewStruct(map[string]any{
		FieldHours:        st.Time.Hour,
		FieldMinutes:      st.Time.Minute,
		FieldSeconds:      st.Time.Second,
		FieldAlarmHours:   st.Alarm.Hour,
		FieldAlarmMinutes: st.Alarm.Minute,
		FieldAlarmSeconds: st.Alarm.Second,
		FieldAlarmsRaised: st.Alarms,
	})
}

// FromStruct converts a GetTime response back to a domain status.
func FromStruct(s *structpb.Struct) (domain.Status, error) {
	fields := s.GetFields()
	values := make(map[string]float64, fieldCount)

	for _, name := range []string{
		FieldHours, FieldMinutes, FieldSeconds,
		FieldAlarmHours, FieldAlarmMinutes, FieldAlarmSeconds,
		FieldAlarmsRaised,
	} {
		v, ok := fields[name].GetKind().(*structpb.Value_NumberValue)
		if !ok || math.IsNaN(v.NumberValue) || v.NumberValue < 0 {
			return domain.Status{}, fmt.Errorf("%w: %s", errMissingField, name)
		}

		values[name] = v.NumberValue
	}

	st := domain.Status{
		Time: domain.Time{
			Hour:   int(values[FieldHours]),
			Minute: int(values[FieldMinutes]),
			Second: int(values[FieldSeconds]),
		},
		Alarm: domain.Time{
			Hour:   int(values[FieldAlarmHours]),
			Minute: int(values[FieldAlarmMinutes]),
			Second: int(values[FieldAlarmSeconds]),
		},
		Alarms: uint64(values[FieldAlarmsRaised]),
	}

	if err := st.Time.Validate(); err != nil {
		return domain.Status{}, err
	}

	if err := st.Alarm.Validate(); err != nil {
		return domain.Status{}, err
	}

	return st, nil
}
