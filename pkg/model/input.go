package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

type RoomType string

const (
	Lecture  RoomType = "lecture"
	Lab      RoomType = "lab"
	Tutorial RoomType = "tutorial"
)

var RoomTypes = []RoomType{Lecture, Lab, Tutorial}

type TimetableSettings struct {
	Days             []string `json:"days" mapstructure:"days"`
	PeriodsPerDay    int      `json:"periodsPerDay" mapstructure:"periodsPerDay"`
	MinutesPerPeriod int      `json:"minutesPerPeriod" mapstructure:"minutesPerPeriod"`
	LunchBreakSlot   int      `json:"lunchBreakSlot" mapstructure:"lunchBreakSlot"`
	LunchDuration    int      `json:"lunchDuration" mapstructure:"lunchDuration"`
}

type PenaltyWeights struct {
	UseLastPeriodPenalty        int `json:"useLastPeriodPenalty" mapstructure:"useLastPeriodPenalty"`
	TeacherDislikePeriodPenalty int `json:"teacherDislikePeriodPenalty" mapstructure:"teacherDislikePeriodPenalty"`
	GroupFirstLastPeriodPenalty int `json:"groupFirstLastPeriodPenalty" mapstructure:"groupFirstLastPeriodPenalty"`
}

type Teacher struct {
	Id             string   `json:"id" mapstructure:"id"`
	Name           string   `json:"name" mapstructure:"name"`
	Subjects       []string `json:"subjects" mapstructure:"subjects"`
	DislikePeriods []int    `json:"dislikePeriods" mapstructure:"dislikePeriods"`
	MaxPerDay      int      `json:"maxPerDay" mapstructure:"maxPerDay"`
	MaxPerWeek     int      `json:"maxPerWeek" mapstructure:"maxPerWeek"`
}

type Group struct {
	Id      string   `json:"id" mapstructure:"id"`
	Size    int      `json:"size" mapstructure:"size"`
	Courses []string `json:"courses" mapstructure:"courses"`
}

type Course struct {
	Id               string   `json:"id" mapstructure:"id"`
	RequiredPerWeek  int      `json:"requiredPerWeek" mapstructure:"requiredPerWeek"`
	RoomType         RoomType `json:"roomType" mapstructure:"roomType"`
	EligibleTeachers []string `json:"eligibleTeachers" mapstructure:"eligibleTeachers"`
	Groups           []string `json:"groups" mapstructure:"groups"`
	Duration         int      `json:"duration" mapstructure:"duration"`
	// Joint courses are taught once to all their groups together instead of once per group
	Joint bool `json:"joint,omitempty" mapstructure:"joint"`
}

type Room struct {
	Id       string   `json:"id" mapstructure:"id"`
	Type     RoomType `json:"type" mapstructure:"type"`
	Capacity int      `json:"capacity" mapstructure:"capacity"`
}

// Configuration is the document exchanged with the configuration client. The engine treats it as an
// immutable snapshot: nothing in this package mutates a Configuration handed to it.
type Configuration struct {
	TimetableSettings TimetableSettings `json:"timetableSettings" mapstructure:"timetableSettings"`
	PenaltyWeights    PenaltyWeights    `json:"penaltyWeights" mapstructure:"penaltyWeights"`
	Teachers          []Teacher         `json:"teachers" mapstructure:"teachers"`
	Groups            []Group           `json:"groups" mapstructure:"groups"`
	Courses           []Course          `json:"courses" mapstructure:"courses"`
	Rooms             []Room            `json:"rooms" mapstructure:"rooms"`
}

func ConfigurationFromJson(file string) (Configuration, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Configuration{}, fmt.Errorf("cannot read configuration file: %w", err)
	}
	return ParseConfiguration(bytes)
}

func ParseConfiguration(bytes []byte) (Configuration, error) {
	var document map[string]any
	if err := json.Unmarshal(bytes, &document); err != nil {
		return Configuration{}, fmt.Errorf("malformed configuration document: %w", err)
	}
	return DecodeConfiguration(document)
}

// DecodeConfiguration turns an already parsed document into a Configuration, rejecting unknown fields
func DecodeConfiguration(document map[string]any) (Configuration, error) {
	var configuration Configuration
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &configuration,
		ErrorUnused: true,
	})
	if err != nil {
		return Configuration{}, err
	}
	if err := decoder.Decode(document); err != nil {
		return Configuration{}, fmt.Errorf("invalid configuration document: %w", err)
	}
	return configuration.normalized(), nil
}

// UnmarshalJSON applies the same strict decoding as ParseConfiguration, so documents embedded in
// other payloads reject unknown fields too
func (configuration *Configuration) UnmarshalJSON(bytes []byte) error {
	decoded, err := ParseConfiguration(bytes)
	if err != nil {
		return err
	}
	*configuration = decoded
	return nil
}

func (configuration Configuration) ToJson() ([]byte, error) {
	return json.MarshalIndent(configuration.normalized(), "", "  ")
}

// Returns a deep copy where every absent list is an empty one, so that the document always serializes arrays
func (configuration Configuration) normalized() Configuration {
	orEmpty := func(values []string) []string {
		if values == nil {
			return []string{}
		}
		return append([]string{}, values...)
	}

	result := configuration
	result.TimetableSettings.Days = orEmpty(configuration.TimetableSettings.Days)

	result.Teachers = make([]Teacher, len(configuration.Teachers))
	for i, teacher := range configuration.Teachers {
		teacher.Subjects = orEmpty(teacher.Subjects)
		teacher.DislikePeriods = append([]int{}, teacher.DislikePeriods...)
		result.Teachers[i] = teacher
	}

	result.Groups = make([]Group, len(configuration.Groups))
	for i, group := range configuration.Groups {
		group.Courses = orEmpty(group.Courses)
		result.Groups[i] = group
	}

	result.Courses = make([]Course, len(configuration.Courses))
	for i, course := range configuration.Courses {
		course.EligibleTeachers = orEmpty(course.EligibleTeachers)
		course.Groups = orEmpty(course.Groups)
		result.Courses[i] = course
	}

	result.Rooms = append([]Room{}, configuration.Rooms...)
	return result
}

// DefaultConfiguration is the document the configuration client starts from
func DefaultConfiguration() Configuration {
	return Configuration{
		TimetableSettings: TimetableSettings{
			Days:             []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			PeriodsPerDay:    8,
			MinutesPerPeriod: 60,
			LunchBreakSlot:   3,
			LunchDuration:    60,
		},
		PenaltyWeights: PenaltyWeights{
			UseLastPeriodPenalty:        20,
			TeacherDislikePeriodPenalty: 10,
			GroupFirstLastPeriodPenalty: 1,
		},
		Teachers: []Teacher{
			{Id: "SJS", Name: "Prof. SJS", Subjects: []string{"SC"}, DislikePeriods: []int{1, 8}, MaxPerDay: 6, MaxPerWeek: 30},
		},
		Groups: []Group{
			{Id: "CSE_1A", Size: 60, Courses: []string{"SC", "OS", "DBMS"}},
		},
		Courses: []Course{
			{Id: "SC", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"SJS"}, Groups: []string{"CSE_1A"}, Duration: 1},
		},
		Rooms: []Room{
			{Id: "R101", Type: Lecture, Capacity: 60},
		},
	}
}
