package web

import (
	"github.com/yigit/alunos/internal/app/dashboard"
	"github.com/yigit/alunos/internal/app/models"
)

type toastView struct {
	Title       string
	Description string
	Destructive bool
}

func newToastView(n *dashboard.Notification) *toastView {
	if n == nil {
		return nil
	}
	return &toastView{Title: n.Title, Description: n.Description, Destructive: n.Destructive()}
}

type studentRow struct {
	ID                 string
	FullName           string
	RegistrationNumber string
	Email              string
	Phone              string
	BirthDate          string
}

type promptView struct {
	Title   string
	Message string
}

type listView struct {
	Loading   bool
	Failed    bool
	Search    string
	Students  []studentRow
	EmptyHint string
	Prompt    *promptView
}

type formView struct {
	Title       string
	SubmitLabel string
	Editing     bool
	Disabled    bool
	Values      models.StudentInput
}

type dashboardPage struct {
	Email string
	Toast *toastView
	List  *listView
	Form  *formView
}

type authPage struct {
	Signup bool
	Email  string
	Toast  *toastView
}

type landingPage struct {
	Toast *toastView
}

func newListView(v *dashboard.ListView) *listView {
	view := &listView{
		Loading: v.State() == dashboard.ListLoading,
		Failed:  v.State() == dashboard.ListError,
		Search:  v.Search(),
	}
	for _, s := range v.Students() {
		view.Students = append(view.Students, studentRow{
			ID:                 s.ID.String(),
			FullName:           s.FullName,
			RegistrationNumber: s.RegistrationNumber,
			Email:              s.Email,
			Phone:              s.Phone,
			BirthDate:          s.FormattedBirthDate(),
		})
	}
	if len(view.Students) == 0 {
		view.EmptyHint = v.Empty().Hint()
	}
	if prompt, ok := v.PendingDelete(); ok {
		view.Prompt = &promptView{Title: prompt.Title(), Message: prompt.Message()}
	}
	return view
}

func newFormView(f *dashboard.FormView) *formView {
	return &formView{
		Title:       f.Title(),
		SubmitLabel: f.SubmitLabel(),
		Editing:     f.Editing(),
		Disabled:    f.Submitting(),
		Values:      f.Values(),
	}
}

func newDashboardPage(d *dashboard.Dashboard, toast *dashboard.Notification) dashboardPage {
	page := dashboardPage{Email: d.Session().Email, Toast: newToastView(toast)}
	if form := d.Form(); form != nil {
		page.Form = newFormView(form)
	} else if list := d.List(); list != nil {
		page.List = newListView(list)
	}
	return page
}
