package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validActivity() ActivityReport {
	return ActivityReport{
		Datetime:  "2024-01-15T10:30",
		Location:  "Daska",
		Findings:  "Crowd near the gate",
		Intensity: "High",
	}
}

func validStatus() StatusReport {
	return StatusReport{
		Date:              "2024-01-15",
		Location:          "Narowal",
		OpeningTime:       "09:00",
		ClosingTime:       "17:30",
		Status:            "Open",
		TotalCameras:      IntPtr(10),
		WorkingCameras:    IntPtr(8),
		NonWorkingCameras: IntPtr(2),
		TotalDaysRecorded: IntPtr(30),
	}
}

func TestActivityReportValidate(t *testing.T) {
	r := validActivity()
	assert.Empty(t, r.Validate())

	r.Location = "Lahore"
	r.Intensity = "Extreme"
	r.Findings = ""
	assert.Equal(t, []string{
		"`Lahore` is not a valid enum value for path `location`.",
		"Path `findings` is required.",
		"`Extreme` is not a valid enum value for path `intensity`.",
	}, r.Validate())
}

func TestActivityReportValidateEmpty(t *testing.T) {
	var r ActivityReport
	assert.Equal(t, []string{
		"Path `datetime` is required.",
		"Path `location` is required.",
		"Path `findings` is required.",
		"Path `intensity` is required.",
	}, r.Validate())
}

func TestActivityReportAssign(t *testing.T) {
	r := validActivity()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	r.Assign("abc", now)

	assert.Equal(t, "abc", r.GetID())
	assert.Equal(t, now, r.CreatedAt)
	assert.NotNil(t, r.Images)
	assert.Empty(t, r.Images)
}

func TestStatusReportValidate(t *testing.T) {
	s := validStatus()
	assert.Empty(t, s.Validate())

	// Counts that do not add up are accepted.
	s.WorkingCameras = IntPtr(50)
	assert.Empty(t, s.Validate())

	// Zero is present, not missing.
	s.TotalDaysRecorded = IntPtr(0)
	assert.Empty(t, s.Validate())

	s.TotalCameras = nil
	s.NonWorkingCameras = IntPtr(-1)
	s.Remarks = ""
	assert.Equal(t, []string{
		"Path `totalCameras` is required.",
		"Path `nonWorkingCameras` (-1) is less than minimum allowed value (0).",
	}, s.Validate())
}

func TestValidationHelpers(t *testing.T) {
	var r ActivityReport
	err := Validator().Struct(&r)
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.True(t, MissingRequired(err))

	r = validActivity()
	r.Intensity = "Extreme"
	err = Validator().Struct(&r)
	assert.True(t, IsInvalid(err))
	assert.False(t, MissingRequired(err))

	assert.False(t, IsInvalid(assert.AnError))
	assert.Equal(t, []string{assert.AnError.Error()}, Messages(assert.AnError))
}

func TestStatusReportUnmarshalCounts(t *testing.T) {
	var s StatusReport
	err := json.Unmarshal([]byte(`{
		"date": "2024-01-15",
		"location": "Narowal",
		"totalCameras": "10",
		"workingCameras": 8,
		"nonWorkingCameras": " 2 ",
		"totalDaysRecorded": "",
		"remarks": "ok"
	}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15", s.Date)
	assert.Equal(t, "Narowal", s.Location)
	assert.Equal(t, "ok", s.Remarks)
	assert.Equal(t, IntPtr(10), s.TotalCameras)
	assert.Equal(t, IntPtr(8), s.WorkingCameras)
	assert.Equal(t, IntPtr(2), s.NonWorkingCameras)
	assert.Nil(t, s.TotalDaysRecorded)
}

func TestStatusReportUnmarshalRejectsNonIntegers(t *testing.T) {
	for _, body := range []string{
		`{"totalCameras": "ten"}`,
		`{"totalCameras": 2.5}`,
		`{"totalCameras": true}`,
	} {
		var s StatusReport
		err := json.Unmarshal([]byte(body), &s)

		var cast *CastError
		require.ErrorAs(t, err, &cast, body)
		assert.Equal(t, "totalCameras", cast.Path)
	}

	var s StatusReport
	err := json.Unmarshal([]byte(`{"totalCameras": "ten"}`), &s)
	assert.EqualError(t, err, `Cast to Number failed for value "ten" at path "totalCameras"`)
}

func TestStatusReportMarshalKeepsNumbers(t *testing.T) {
	s := validStatus()
	data, err := json.Marshal(&s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalCameras":10`)

	var back StatusReport
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.TotalCameras, back.TotalCameras)
	assert.Empty(t, back.Validate())
}

func TestInt(t *testing.T) {
	assert.Equal(t, 0, Int(nil))
	assert.Equal(t, 7, Int(IntPtr(7)))
}
