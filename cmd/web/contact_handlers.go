package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/cms"
	handlersPkg "piriven.moe.gov.lk/web/internal/handlers"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/observability"
)

// Flash keys, resolved through the string bundle on the next page view. A
// flash that is not a bundle key is shown as written.
const (
	flashContactSent   = "contact.sent"
	flashSubscribed    = "newsletter.subscribed"
	flashSubscribeFail = "newsletter.failed"
)

// ContactPageView backs /contact.
type ContactPageView struct {
	Info   handlersPkg.ContactView
	Form   cms.ContactMessage
	Errors map[string]string
	Error  string
}

// ContactHandler renders the contact details and form.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	g := newGroup(r)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "contact", res)

	view := ContactPageView{Info: handlersPkg.BuildContact(lang, footer.contacts)}
	renderContact(w, r, http.StatusOK, footer.build(lang), view)
}

// ContactSubmitHandler validates the form before anything reaches the CMS.
// Invalid input is re-rendered with inline messages and no CMS request.
func ContactSubmitHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	msg := cms.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}.Normalize()

	if err := msg.Validate(); err != nil {
		view := ContactPageView{
			Info:   handlersPkg.BuildContact(lang, nil),
			Form:   msg,
			Errors: localizeFieldErrors(lang, err),
		}
		renderContact(w, r, http.StatusUnprocessableEntity, footerFallback(lang), view)
		return
	}

	if err := cmsClient.SendContact(r.Context(), msg); err != nil {
		observability.FromContext(r.Context()).Warn("contact submission failed", zap.Error(err))
		g := newGroup(r)
		footer := fetchFooter(g)
		reportFailures(r, "contact", g.Wait())
		view := ContactPageView{
			Info:   handlersPkg.BuildContact(lang, footer.contacts),
			Form:   msg,
			Errors: localizeFieldErrors(lang, err),
			Error:  submitMessage(lang, err, "contact.failed", cms.MsgContactFailed),
		}
		renderContact(w, r, http.StatusBadGateway, footer.build(lang), view)
		return
	}

	mw.GetSession(r).SetFlash(flashContactSent)
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func renderContact(w http.ResponseWriter, r *http.Request, code int, footer handlersPkg.FooterData, view ContactPageView) {
	lang := mw.Lang(r)
	title := i18nOrDefault(lang, "contact.title", "Contact")
	vm := newPageData(r, title, i18nOrDefault(lang, "contact.description", ""), "contact-info", "contact-form", "contact-map")
	vm.Footer = footer
	vm.Contact = view
	renderPageStatus(w, r, code, "contact", vm)
}

// NewsletterView is the newsletter form fragment.
type NewsletterView struct {
	Lang      i18n.Lang
	CSRFToken string
	Email     string
	Message   string
	Error     string
	Next      string
}

// NewsletterHandler subscribes an address. htmx requests get the form
// fragment back; plain posts are redirected with a flash.
func NewsletterHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	email := strings.TrimSpace(r.PostFormValue("email"))
	next := mw.SafeNext(r.PostFormValue("next"))

	err := cmsClient.Subscribe(r.Context(), email)
	if err != nil {
		observability.FromContext(r.Context()).Info("newsletter subscription rejected", zap.Error(err))
	}

	if !mw.IsHTMX(r.Context()) {
		s := mw.GetSession(r)
		if err != nil {
			s.SetFlash(submitMessage(lang, err, flashSubscribeFail, cms.MsgSubscribeFailed))
		} else {
			s.SetFlash(flashSubscribed)
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	view := NewsletterView{Lang: lang, CSRFToken: mw.CSRFToken(r), Next: next}
	if err != nil {
		view.Email = email
		view.Error = submitMessage(lang, err, flashSubscribeFail, cms.MsgSubscribeFailed)
	} else {
		view.Message = i18nOrDefault(lang, flashSubscribed, "Thank you for subscribing!")
	}
	renderTemplate(w, r, "frag_newsletter", view)
}

func localizeFieldErrors(lang i18n.Lang, err error) map[string]string {
	var verr *cms.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string]string, len(verr.Fields))
	for field, key := range verr.Fields {
		out[field] = i18nOrDefault(lang, key, key)
	}
	return out
}

// submitMessage picks the visitor-facing reason for a rejected form.
func submitMessage(lang i18n.Lang, err error, key, def string) string {
	var verr *cms.ValidationError
	if errors.As(err, &verr) {
		for _, field := range []string{"email", "name", "message"} {
			if k := verr.Field(field); k != "" {
				return i18nOrDefault(lang, k, k)
			}
		}
	}
	var serr *cms.SubmitError
	if errors.As(err, &serr) && serr.Message != "" && serr.Message != def {
		return serr.Message
	}
	return i18nOrDefault(lang, key, def)
}
