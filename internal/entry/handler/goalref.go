package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	dErrors "smartsave/pkg/domain-errors"
)

// GoalRef is a goal reference as clients send it: a JSON number, a numeric
// string, or one of the empty sentinels (null, "", "null"), all of which
// mean "no goal". Anything else fails validation.
type GoalRef struct {
	ID *int64
}

func (g *GoalRef) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return dErrors.New(dErrors.CodeValidation, "goal_id must be a number")
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			return nil
		}
		raw = s
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "goal_id must be a number")
	}
	g.ID = &id
	return nil
}
