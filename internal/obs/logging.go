// Package obs contains observability utilities such as logging.
package obs

import (
	"github.com/sirupsen/logrus"
)

// Logger is the global structured logger used by the service.
var Logger = logrus.StandardLogger()

// InitLogger configures the global Logger with a JSON formatter at info
// level.
func InitLogger() {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	Logger = l
}
