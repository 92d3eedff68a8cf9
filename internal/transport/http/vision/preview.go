package vision

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainimage "tarotvision-server-go/internal/domain/image"
	"tarotvision-server-go/internal/domain/match"
)

var previewUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePreview serves the live preview socket. Each frame is matched
// through the same matcher the issuer uses, so preview feedback and
// the authoritative result can never disagree.
func (s *Service) handlePreview(c *gin.Context) {
	deckStyle := c.Query("deck_style")
	if deckStyle == "" {
		deckStyle = s.config.Vision.DefaultDeckStyle
	}
	includeMinor := c.Query("include_minor") == "true"

	conn, err := previewUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnTag("VISION", "preview upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	s.logger.DebugTag("VISION", "preview session opened for deck %s", deckStyle)

	for {
		var frame previewFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.DebugTag("VISION", "preview session ended: %v", err)
			}
			return
		}

		reply := s.matchFrame(c, frame, deckStyle, includeMinor)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.WarnTag("VISION", "preview write failed: %v", err)
			return
		}
	}
}

func (s *Service) matchFrame(c *gin.Context, frame previewFrame, deckStyle string, includeMinor bool) previewReply {
	raw, err := s.pipeline.Process(domainimage.Payload{Data: frame.Data, Format: frame.Format})
	if err != nil {
		return previewReply{Error: err.Error()}
	}

	scope := match.Scope{
		DeckStyle:    deckStyle,
		IncludeMinor: includeMinor,
	}
	if frame.Expected != "" {
		scope.Expected = map[int]string{frame.Position: frame.Expected}
	}

	results, err := s.matcher.Match(c.Request.Context(),
		[]match.UploadedImage{{PositionIndex: frame.Position, Bytes: raw}}, scope)
	if err != nil {
		return previewReply{Error: err.Error()}
	}
	return previewReply{OK: true, Result: &results[0]}
}
