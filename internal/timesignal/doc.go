// Package timesignal provides the two alarm actions: a local sound clip and
// a synthesized voice announcement. The variant is picked from configuration
// once at startup, never per alarm.
package timesignal
