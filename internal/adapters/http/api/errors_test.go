package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestErrorHelpers(t *testing.T) {
	convey.Convey("Given wrapped API errors", t, func() {
		cause := errors.New("unexpected EOF")

		convey.Convey("WrapKind matches both kind and cause", func() {
			err := WrapKind("api.connect", ErrBadRequest, cause)
			convey.So(err.Error(), convey.ShouldEqual, "api.connect: bad request: unexpected EOF")
			convey.So(errors.Is(err, ErrBadRequest), convey.ShouldBeTrue)
			convey.So(errors.Is(err, cause), convey.ShouldBeTrue)
		})

		convey.Convey("NewKind has no cause", func() {
			err := NewKind("api.stats", ErrMethodNotAllowed)
			convey.So(err.Error(), convey.ShouldEqual, "api.stats: method not allowed")
			status, code := classify(err)
			convey.So(status, convey.ShouldEqual, http.StatusMethodNotAllowed)
			convey.So(code, convey.ShouldEqual, "method_not_allowed")
		})

		convey.Convey("Wrap keeps nil", func() {
			convey.So(Wrap("op", nil), convey.ShouldBeNil)
		})

		convey.Convey("Unknown errors are internal and timeouts are gateway timeouts", func() {
			status, _ := classify(cause)
			convey.So(status, convey.ShouldEqual, http.StatusInternalServerError)
			status, code := classify(fmt.Errorf("get: %w", context.DeadlineExceeded))
			convey.So(status, convey.ShouldEqual, http.StatusGatewayTimeout)
			convey.So(code, convey.ShouldEqual, "timeout")
		})
	})
}

func TestGetErrorType(t *testing.T) {
	convey.Convey("Given HTTP status codes", t, func() {
		convey.So(getErrorType(http.StatusBadGateway), convey.ShouldEqual, "upstream")
		convey.So(getErrorType(http.StatusInternalServerError), convey.ShouldEqual, "server_error")
		convey.So(getErrorType(http.StatusConflict), convey.ShouldEqual, "conflict")
		convey.So(getErrorType(http.StatusUnprocessableEntity), convey.ShouldEqual, "invalid_assignment")
		convey.So(getErrorType(http.StatusNotFound), convey.ShouldEqual, "not_found")
		convey.So(getErrorType(http.StatusBadRequest), convey.ShouldEqual, "client_error")
		convey.So(getErrorType(http.StatusOK), convey.ShouldEqual, "unknown")
	})
}
