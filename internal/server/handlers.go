package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/nexucore/internal/attach"
	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/chat"
	"github.com/comigor/nexucore/internal/history"
	"github.com/comigor/nexucore/internal/llm"
	"github.com/comigor/nexucore/internal/render"
	"github.com/comigor/nexucore/internal/sandbox"
	"github.com/comigor/nexucore/internal/segment"
)

type conversationSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Mode      string `json:"mode"`
	Persona   string `json:"persona"`
	Timestamp int64  `json:"timestamp"`
	Active    bool   `json:"active"`
	Busy      bool   `json:"busy"`
}

func (s *Server) summary(c history.Conversation, active string) conversationSummary {
	return conversationSummary{
		ID:        c.ID,
		Title:     c.Title,
		Mode:      c.Mode,
		Persona:   c.Persona,
		Timestamp: c.Timestamp.UnixMilli(),
		Active:    c.ID == active,
		Busy:      s.chat.Busy(c.ID),
	}
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"modes":    chat.Modes,
		"personas": []chat.Persona{chat.PersonaUser, chat.PersonaDeveloper},
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	active := s.chat.Active()
	convs := s.chat.List()
	out := make([]conversationSummary, len(convs))
	for i, c := range convs {
		out[i] = s.summary(c, active)
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Mode    string `json:"mode"`
		Persona string `json:"persona"`
	}
	if r.ContentLength != 0 {
		if err := decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	c := s.chat.Create(r.Context(), chat.Options{Mode: chat.ParseMode(in.Mode), Persona: chat.ParsePersona(in.Persona)})
	JSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	c, err := s.chat.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.chat.Activate(id); err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"active": id})
}

type turnRequest struct {
	Message        string `json:"message"`
	Mode           string `json:"mode"`
	Persona        string `json:"persona"`
	AspectRatio    string `json:"aspectRatio"`
	SystemOverride string `json:"systemOverride"`
}

type turnResponse struct {
	ConversationID string             `json:"conversationId"`
	User           history.Message    `json:"user"`
	Reply          history.Message    `json:"reply"`
	Parts          []llm.InlineBinary `json:"parts,omitempty"`
	Segments       []segment.Record   `json:"segments"`
	Blocks         []render.Block     `json:"blocks"`
	Discarded      bool               `json:"discarded"`
	Failed         bool               `json:"failed"`
}

// readTurn accepts either a multipart form (message, mode, persona,
// aspectRatio, files) or a JSON body without files.
func readTurn(w http.ResponseWriter, r *http.Request) (turnRequest, []attach.Source, error) {
	var in turnRequest
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := decode(w, r, &in); err != nil {
			return in, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return in, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return in, nil, fmt.Errorf("invalid form: %w", err)
	}
	in = turnRequest{
		Message:        r.FormValue("message"),
		Mode:           r.FormValue("mode"),
		Persona:        r.FormValue("persona"),
		AspectRatio:    r.FormValue("aspectRatio"),
		SystemOverride: r.FormValue("systemOverride"),
	}
	var sources []attach.Source
	for _, fh := range r.MultipartForm.File["files"] {
		sources = append(sources, attach.FromMultipart(fh))
	}
	return in, sources, nil
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, sources, err := readTurn(w, r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	files, err := attach.Encode(r.Context(), sources)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := chat.Options{
		Mode:           chat.ParseMode(in.Mode),
		Persona:        chat.ParsePersona(in.Persona),
		SystemOverride: in.SystemOverride,
	}
	if in.AspectRatio != "" {
		opts.ImageConfig = &chat.ImageConfig{AspectRatio: in.AspectRatio}
	}

	res, err := s.chat.Submit(r.Context(), id, chat.TurnInput{Message: in.Message, Files: files, Options: opts})
	if err != nil {
		fail(w, err)
		return
	}

	segs := segment.Split(res.Reply.Text)
	blocks, err := render.NewHTMLComposer().Compose(segs)
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, turnResponse{
		ConversationID: res.ConversationID,
		User:           res.User,
		Reply:          res.Reply,
		Parts:          res.Parts,
		Segments:       segment.Records(segs),
		Blocks:         blocks,
		Discarded:      res.Discarded,
		Failed:         res.Failed,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	segs := segment.Split(in.Text)
	blocks, err := render.NewHTMLComposer().Compose(segs)
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"segments": segment.Records(segs), "blocks": blocks})
}

func (s *Server) handleChartExport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	spec, err := chart.Parse(string(body))
	if err != nil {
		Error(w, http.StatusBadRequest, segment.ChartErrorNotice)
		return
	}
	format := chart.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = chart.FormatSVG
	}
	if format != chart.FormatSVG && format != chart.FormatPNG {
		Error(w, http.StatusBadRequest, "format must be svg or png")
		return
	}
	exp, err := s.exporter.Export(spec, format)
	if err != nil {
		fail(w, err)
		return
	}
	download(w, exp.Name, exp.ContentType, exp.Body)
}

func (s *Server) readMarkup(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in struct {
		Markup string `json:"markup"`
	}
	if err := decode(w, r, &in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	return in.Markup, true
}

func (s *Server) handlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	markup, ok := s.readMarkup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Security-Policy", sandbox.ContentSecurityPolicy)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, sandbox.New(markup).Document())
}

func (s *Server) handlePreviewExport(w http.ResponseWriter, r *http.Request) {
	markup, ok := s.readMarkup(w, r)
	if !ok {
		return
	}
	exp := sandbox.New(markup).Export(s.app)
	download(w, exp.Name, exp.ContentType, exp.Body)
}

type previewViewRequest struct {
	Markup string  `json:"markup"`
	View   string  `json:"view"`
	Edit   *string `json:"edit,omitempty"`
	Toggle bool    `json:"toggle"`
}

type previewViewResponse struct {
	View   string `json:"view"`
	Markup string `json:"markup"`
	HTML   string `json:"html"`
}

// handlePreviewView drives one preview block: it restores the client's view,
// applies a raw-view edit, optionally toggles, and returns the fragment for
// the resulting view. The returned markup is authoritative from then on.
func (s *Server) handlePreviewView(w http.ResponseWriter, r *http.Request) {
	var in previewViewRequest
	if err := decode(w, r, &in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sb := sandbox.New(in.Markup)
	if in.View == sandbox.Raw.String() {
		sb.Toggle()
	}
	if in.Edit != nil {
		if err := sb.Edit(*in.Edit); err != nil {
			fail(w, err)
			return
		}
	}
	if in.Toggle {
		sb.Toggle()
	}
	JSON(w, http.StatusOK, previewViewResponse{View: sb.View().String(), Markup: sb.Markup(), HTML: sb.Render()})
}

func download(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
