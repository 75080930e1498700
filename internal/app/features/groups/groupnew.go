// internal/app/features/groups/groupnew.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

func (in groupRequest) validate(requireName bool) (groupRequest, error) {
	var (
		out groupRequest
		err error
	)
	if requireName {
		out.Name, err = inputval.Text("name", in.Name, inputval.MaxNameLen)
	} else {
		out.Name, err = inputval.OptionalText("name", in.Name, inputval.MaxNameLen)
	}
	if err != nil {
		return out, err
	}
	if out.Description, err = inputval.OptionalText("description", in.Description, maxDescriptionLen); err != nil {
		return out, err
	}
	if in.Privacy != "" {
		if out.Privacy, err = inputval.OneOf("privacy", in.Privacy, models.PrivacyPublic, models.PrivacyPrivate); err != nil {
			return out, err
		}
	}
	return out, nil
}

// HandleCreateGroup handles POST /groups. The caller becomes owner, first
// admin and only member.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in groupRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "group: decode", err)
		return
	}
	in, err := in.validate(true)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.Create(ctx, uid, in.Name, in.Description, in.Privacy)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group: create", err)
		return
	}
	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("owner", uid.Hex()))
	respond.Created(w, g)
}
