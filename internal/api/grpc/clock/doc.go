// Package clock implements the gRPC status transport of the alarm clock.
//
// ClockService/GetTime takes google.protobuf.Empty and answers with a
// google.protobuf.Struct holding the last printed time, the alarm target and
// the number of alarms raised, so clients need no generated code.
package clock
