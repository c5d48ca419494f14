package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/registration"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/views"
)

// MachineFactory builds the registration machine mounted when the form opens.
type MachineFactory func() *registration.Machine

type registerForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Mobile          string `form:"mobile"`
	OTP             string `form:"otp"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (f *registerForm) trim() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Mobile = strings.TrimSpace(f.Mobile)
	f.OTP = strings.TrimSpace(f.OTP)
}

// RegistrationStatus maps a machine snapshot to what the form shows.
func RegistrationStatus(s registration.Snapshot) dto.RegistrationStatusDTO {
	label := "Send OTP"
	switch {
	case s.Remaining > 0:
		label = fmt.Sprintf("Resend in %ds", s.Remaining)
	case s.State == registration.StateOtpSent:
		label = "Resend OTP"
	}
	return dto.RegistrationStatusDTO{
		State:       s.State.String(),
		Remaining:   s.Remaining,
		CanSend:     s.CanSend,
		Verified:    s.State == registration.StateVerified,
		ResendLabel: label,
	}
}

// machine returns the visitor's mounted machine, mounting one if the form was
// posted without being opened first.
func machine(sess *session.Session, build MachineFactory) *registration.Machine {
	if m := sess.Registration(); m != nil {
		return m
	}
	return sess.MountRegistration(build)
}

func renderRegister(c *gin.Context, v *views.Renderer, status int, m *registration.Machine, form registerForm) {
	snap := m.Snapshot()
	view := views.RegisterView{
		Username: form.Username,
		Email:    form.Email,
		Mobile:   form.Mobile,
		OTP:      form.OTP,
		Status:   RegistrationStatus(snap),
	}
	if snap.State == registration.StateVerified {
		view.Email, view.Mobile = snap.Email, snap.Mobile
	}
	renderPage(c, v, status, views.PageRegister, "Register", view)
}

// failureMessage is the visitor-facing text for a machine or API error.
func failureMessage(err error, fallback string) string {
	var apiErr *directoryclient.APIError
	if errors.As(err, &apiErr) {
		return directoryclient.Message(err, fallback)
	}
	for _, known := range []error{
		registration.ErrMissingContact, registration.ErrInvalidMobile, registration.ErrInvalidOTPLength,
		registration.ErrPasswordMismatch, registration.ErrOTPNotVerified, registration.ErrOTPNotSent,
		registration.ErrResendCooldown, registration.ErrContactChanged, registration.ErrAlreadyVerified,
		registration.ErrBusy, registration.ErrClosed,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}

// RegisterPageHandler opens the form with a fresh machine, replacing any
// earlier one of this visitor.
func RegisterPageHandler(v *views.Renderer, build MachineFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := session.Current(c).MountRegistration(build)
		renderRegister(c, v, http.StatusOK, m, registerForm{})
	}
}

func SendOTPHandler(v *views.Renderer, build MachineFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form registerForm
		_ = c.ShouldBind(&form)
		form.trim()

		m := machine(sess, build)
		status := http.StatusOK
		if err := m.SendOTP(c.Request.Context(), form.Email, form.Mobile); err != nil {
			sess.Alert.Error(failureMessage(err, "Failed to send OTP. Please try again."))
			status = http.StatusUnprocessableEntity
		} else {
			sess.Alert.Success("OTP sent to your email and mobile!")
		}
		renderRegister(c, v, status, m, form)
	}
}

func VerifyOTPHandler(v *views.Renderer, build MachineFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form registerForm
		_ = c.ShouldBind(&form)
		form.trim()

		m := machine(sess, build)
		status := http.StatusOK
		if err := m.VerifyOTP(c.Request.Context(), form.OTP); err != nil {
			sess.Alert.Error(failureMessage(err, "OTP verification failed. Please try again."))
			status = http.StatusUnprocessableEntity
		} else {
			sess.Alert.Success("OTP verified successfully!")
		}
		renderRegister(c, v, status, m, form)
	}
}

func RegisterHandler(v *views.Renderer, build MachineFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form registerForm
		_ = c.ShouldBind(&form)
		form.trim()

		m := machine(sess, build)
		err := m.Submit(c.Request.Context(), registration.Submission{
			Username:        form.Username,
			Email:           form.Email,
			Mobile:          form.Mobile,
			Password:        form.Password,
			ConfirmPassword: form.ConfirmPassword,
			OTP:             form.OTP,
		})
		if err != nil {
			sess.Alert.Error(failureMessage(err, "Registration failed. Please try again."))
			renderRegister(c, v, http.StatusUnprocessableEntity, m, form)
			return
		}
		sess.DropRegistration(m)
		sess.Alert.Success("Registration successful! Please login.")
		redirect(c, "/login")
	}
}

// @Summary Registration form status
// @Description Live countdown and state of the visitor's registration form
// @Tags registration
// @Produce json
// @Success 200 {object} dto.RegistrationStatusDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /register/status [get]
func RegisterStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := session.Current(c).Registration()
		if m == nil {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "registration_not_started"})
			return
		}
		c.JSON(http.StatusOK, RegistrationStatus(m.Snapshot()))
	}
}
