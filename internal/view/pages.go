package view

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/upresume/internal/repository"
)

type LandingData struct {
	Base
	Env     string
	BaseURL string
}

func Landing(d LandingData) templ.Component {
	if d.Title == "" {
		d.Title = "Welcome to Our Platform"
	}
	return render("landing", d)
}

// AuthFormData backs the login and signup forms.
type AuthFormData struct {
	Base
	Error         string
	Notice        string
	CallbackURL   string
	GoogleEnabled bool
}

func Login(d AuthFormData) templ.Component {
	d.Title = "Log in"
	return render("login", d)
}

func Signup(d AuthFormData) templ.Component {
	d.Title = "Create an account"
	return render("signup", d)
}

type VerifyEmailData struct {
	Base
	Message string
	Success bool
}

func VerifyEmail(d VerifyEmailData) templ.Component {
	d.Title = "Verify email"
	return render("verify_email", d)
}

type ResetPasswordData struct {
	Base
	Token string
	Error string
}

func ResetPassword(d ResetPasswordData) templ.Component {
	d.Title = "Reset password"
	return render("reset_password", d)
}

func NotFound(b Base) templ.Component {
	b.Title = "Page Not Found"
	return render("not_found", b)
}

// LoadingData backs the placeholder shown while a session resolves.
// PollURL is re-requested by htmx until the page can render.
type LoadingData struct {
	Base
	PollURL string
}

func Loading(d LoadingData) templ.Component {
	d.Title = "Loading"
	return render("loading", d)
}

// NavItem is one sidebar entry.
type NavItem struct {
	Title  string
	Href   string
	Group  string
	Active bool
}

var navItems = []NavItem{
	{Title: "Dashboard", Href: "/dashboard", Group: "Main"},
	{Title: "Analytics", Href: "/analytics", Group: "Main"},
	{Title: "Documents", Href: "/documents", Group: "Main"},
	{Title: "Users", Href: "/users", Group: "Main"},
	{Title: "Account", Href: "/account", Group: "Account"},
	{Title: "Billing", Href: "/billing", Group: "Account"},
	{Title: "Settings", Href: "/settings", Group: "Account"},
}

// Nav returns the sidebar entries with the one at active highlighted.
func Nav(active string) []NavItem {
	items := make([]NavItem, len(navItems))
	for i, it := range navItems {
		it.Active = it.Href == active
		items[i] = it
	}
	return items
}

// SidebarUser is the user block at the bottom of the sidebar.
type SidebarUser struct {
	Name    string
	Email   string
	Image   string
	Initial string
}

// NewSidebarUser applies the "User" and initial fallbacks.
func NewSidebarUser(u *repository.User) SidebarUser {
	if u == nil {
		return SidebarUser{Name: "User", Initial: "U"}
	}
	var name, image string
	if u.Name != nil {
		name = *u.Name
	}
	if u.Image != nil {
		image = *u.Image
	}
	return SidebarUser{
		Name:    u.DisplayName("User"),
		Email:   u.Email,
		Image:   image,
		Initial: Initial(name, u.Email),
	}
}

// DashboardData backs every page behind the gate.
type DashboardData struct {
	Base
	Nav    []NavItem
	User   SidebarUser
	Error  string
	Notice string
}

// Dashboard renders page (a file under templates/pages) inside the admin layout.
func Dashboard(page string, d DashboardData) templ.Component {
	return render(page, d)
}
