// Package logger wraps zap to provide:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - file output for the terminal display, where stdout belongs to the UI.
//
// Services accept a context and extract the logger from it, so every
// subsystem (flip engine, scheduler, time signal, transports) logs under its
// own name.
package logger
