package webui

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ourstory/cycle"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// cycleHandler renders the 28-day phase calendar.  A day query parameter
// inspects another day without moving the "today" marker.
func (u *WebUI) cycleHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/cycle" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	current := cycle.CurrentCycleDay(time.Now(), u.cycleEpoch)
	currentPhase, err := cycle.PhaseForDay(current)
	if err != nil {
		glog.Errorf("Error while computing current phase: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	inspect := current
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > cycle.Days {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		inspect = day
	}
	inspectPhase, err := cycle.PhaseForDay(inspect)
	if err != nil {
		glog.Errorf("Error while computing inspected phase: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.CycleParams{
		CurrentDay:   current,
		CurrentPhase: currentPhase.String(),
		InspectDay:   inspect,
		InspectPhase: inspectPhase.String(),
	}
	for day := 1; day <= cycle.Days; day++ {
		phase, err := cycle.PhaseForDay(day)
		if err != nil {
			glog.Errorf("Error while computing phase for day %d: %v", day, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		params.Days = append(params.Days, &uitemplates.CycleDayView{
			Day:     day,
			Phase:   phase.String(),
			Today:   day == current,
			Inspect: fmt.Sprintf("/cycle?day=%d", day),
		})
	}

	render(w, uitemplates.CycleTemplate, params)
}
