package httpx

import (
	"fmt"
	"net/http"

	"github.com/danschewy/lexiform/log"
)

// LogInternalError logs the error under its code and replies 500 with the
// default status text. The error itself never reaches the client.
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// LogNotFound logs the missing id at debug level and replies 404.
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// LogStatus logs the code at the given level and replies with the status
// and its default text.
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// LogStatusMsg logs the code and formatted message at the given level, and
// sends the message to the client along with the status.
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}
