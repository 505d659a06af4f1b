// file: logger/logger.go

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. It is initialized once in Init and
// used by every layer through this package.
var Log = logrus.New()

// Init configures the global logger. Output format and level can be switched
// via the LOG_FORMAT and LOG_LEVEL environment variables, which keeps the
// config package free of a circular dependency on the logger.
func Init() {
	Log.SetOutput(os.Stdout)

	if os.Getenv("LOG_FORMAT") == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
