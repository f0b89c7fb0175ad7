package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/enrich"
	"github.com/sells-group/poligraft/internal/model"
)

// errorMessage is shown for any submission that could not be stored.
const errorMessage = "Sorry, couldn't process that input."

var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][0-9A-Za-z_$.]*$`)

// submission is the decoded form or JSON body of POST /poligraft.
type submission struct {
	URL          string `json:"url"`
	Text         string `json:"text"`
	SuppressText flag   `json:"suppresstext"`
	TextOnly     flag   `json:"textonly"`
	JSON         flag   `json:"json"`
	Callback     string `json:"callback"`
	Honeypot     string `json:"a_comment_body"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sub.Callback != "" && !callbackPattern.MatchString(sub.Callback) {
		http.Error(w, "invalid callback", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(sub.Honeypot) != "" {
		zap.L().Info("api: honeypot submission rejected", zap.String("remote", r.RemoteAddr))
		s.submitFailed(w, r, sub, http.StatusUnprocessableEntity)
		return
	}

	res, err := s.creator.Create(r.Context(), enrich.CreateInput{
		URL:          sub.URL,
		Text:         sub.Text,
		SuppressText: bool(sub.SuppressText),
		TextOnly:     bool(sub.TextOnly),
	})
	if err != nil {
		status := http.StatusInternalServerError
		var ve *model.ValidationError
		var fe *model.FetchError
		if errors.As(err, &ve) || errors.As(err, &fe) {
			status = http.StatusUnprocessableEntity
			zap.L().Info("api: submission rejected", zap.Error(err))
		} else {
			zap.L().Error("api: create result", zap.Error(err))
		}
		s.submitFailed(w, r, sub, status)
		return
	}

	if !res.Processed && s.dispatcher != nil {
		// A failed enqueue leaves the Result unprocessed; serve startup
		// re-enqueues it.
		if err := s.dispatcher.Enqueue(r.Context(), res.ID); err != nil {
			zap.L().Error("api: enqueue result",
				zap.String("result_id", res.ID),
				zap.Error(err),
			)
		}
	}

	target := "/" + res.Slug
	if sub.JSON {
		target += ".json"
		if sub.Callback != "" {
			target += "?callback=" + url.QueryEscape(sub.Callback)
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// submitFailed answers JSON submitters with an error body and everyone
// else with a redirect back to the form.
func (s *Server) submitFailed(w http.ResponseWriter, r *http.Request, sub submission, status int) {
	if sub.JSON {
		writeView(w, status, map[string]string{"error": errorMessage}, sub.Callback)
		return
	}
	http.Redirect(w, r, "/?error="+url.QueryEscape(errorMessage), http.StatusFound)
}

func decodeSubmission(r *http.Request) (submission, error) {
	var sub submission
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&sub)
		return sub, err
	}

	if err := r.ParseForm(); err != nil {
		return sub, err
	}
	sub.URL = strings.TrimSpace(r.Form.Get("url"))
	sub.Text = r.Form.Get("text")
	sub.SuppressText = flag(formBool(r.Form.Get("suppresstext")))
	sub.TextOnly = flag(formBool(r.Form.Get("textonly")))
	sub.JSON = r.Form.Get("json") == "1"
	sub.Callback = r.Form.Get("callback")
	sub.Honeypot = r.Form.Get("a_comment_body")
	return sub, nil
}

// flag decodes a JSON boolean, or the string and number spellings the form
// accepts ("1", "true", "on", "yes").
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = flag(t)
	case string:
		*f = flag(formBool(t))
	case float64:
		*f = t == 1
	case nil:
		*f = false
	default:
		return errors.New("api: invalid boolean")
	}
	return nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
