package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/middleware"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
)

const invalidLogin = "Please enter a correct email and password. Note that both fields may be case-sensitive."

func (h *Handler) loginForm(c *gin.Context) {
	if middleware.Claims(c) != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
}

func (h *Handler) login(c *gin.Context) {
	email := c.PostForm("email")
	next := c.PostForm("next")

	user, err := h.Authenticator.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.Logger.Warn("Login failed", "email", email)
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{"Email": email, "Next": next, "Error": invalidLogin})
		return
	}
	if err != nil {
		h.fail(c, "Login failed", err)
		return
	}

	token, err := h.JWT.Generate(user)
	if err != nil {
		h.fail(c, "Failed to generate token", err)
		return
	}
	h.setSession(c, token)
	h.Logger.Info("User logged in successfully", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, safeNext(next, "/home"))
}

// safeNext only follows local redirects.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func profileFormFrom(c *gin.Context) auth.ProfileForm {
	return auth.ProfileForm{
		Username:  c.PostForm("username"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Birthdate: c.PostForm("birthdate"),
		Phone:     c.PostForm("phone"),
	}
}

func (h *Handler) signupForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", gin.H{"Form": auth.SignupForm{}})
}

func (h *Handler) signup(c *gin.Context) {
	form := auth.SignupForm{
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
		ProfileForm:     profileFormFrom(c),
	}

	user, err := h.Authenticator.Register(c.Request.Context(), form)
	if errs, ok := validation.From(err); ok {
		form.Password, form.PasswordConfirm = "", ""
		h.render(c, http.StatusUnprocessableEntity, "signup.html", gin.H{"Form": form, "Errors": errs})
		return
	}
	if err != nil {
		h.fail(c, "Registration failed", err)
		return
	}

	token, err := h.JWT.Generate(user)
	if err != nil {
		h.fail(c, "Failed to generate token", err)
		return
	}
	h.setSession(c, token)
	h.Logger.Info("User registered successfully", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, "/signup/success")
}

func (h *Handler) profile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{"User": user})
}

func formFromProfile(p models.Profile) auth.ProfileForm {
	form := auth.ProfileForm{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
	if p.Birthdate != nil {
		form.Birthdate = p.Birthdate.Format(models.DateLayout)
	}
	return form
}

func (h *Handler) profileForm(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "profile_edit.html", gin.H{"Form": formFromProfile(user.Profile)})
}

func (h *Handler) editProfile(c *gin.Context) {
	ctx := c.Request.Context()
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	form := profileFormFrom(c)
	profile, err := auth.ValidateProfile(ctx, h.Store, form, user.ID, h.now())
	if errs, ok := validation.From(err); ok {
		h.render(c, http.StatusUnprocessableEntity, "profile_edit.html", gin.H{"Form": form, "Errors": errs})
		return
	}
	if err != nil {
		h.fail(c, "Profile validation failed", err)
		return
	}

	if err := h.Store.UpdateProfile(ctx, user.ID, profile); err != nil {
		h.fail(c, "Failed to update profile", err)
		return
	}
	h.Logger.Info("Profile updated", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, "/profile")
}
