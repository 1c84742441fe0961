package campus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDecodesEnvelopes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/event/data/0":
			w.Write([]byte(`[{"id":1,"name":"AI Workshop","venue":"Lab 3"}]`))
		case "/api/department/data/0":
			w.Write([]byte(`{"success":true,"data":{"departments":[{"name":"Computer Science"}]}}`))
		case "/api/cafeteria/menu/0":
			w.Write([]byte(`{"menu":[{"name":"Veg Curry","category":"vegetarian","price":350}]}`))
		case "/api/bus/route/0":
			w.Write([]byte(`{"id":5,"route_name":"City Loop","route_number":"B1"}`))
		case "/api/user/exam-result":
			var body userRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "42", body.UserID)
			w.Write([]byte(`{"exam_results":[{"course_code":"CS302","grade":"A"}]}`))
		case "/api/user/fetch":
			w.Write([]byte(`{"error":"user not found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", time.Second, NewMemoryCache(time.Minute), time.Minute)
	ctx := context.Background()

	events, err := c.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "AI Workshop", events[0].Name)

	depts, err := c.Departments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "Computer Science", depts[0].Name)

	menu, err := c.Menu(ctx, 0)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, 350.0, menu[0].Price)

	routes, err := c.BusRoutes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "B1", routes[0].RouteNumber)

	exams, err := c.ExamResults(ctx, "42")
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "CS302", exams[0].CourseCode)

	_, err = c.UserProfile(ctx, "42")
	assert.ErrorContains(t, err, "user not found")

	// GETs are served from cache the second time.
	before := hits.Load()
	_, err = c.Events(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, before, hits.Load())
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil, 0)
	_, err := c.Events(context.Background(), 0)
	assert.ErrorContains(t, err, "status 502")
}

func TestFilterBusRoutes(t *testing.T) {
	routes := BusRoutes{
		{RouteNumber: "B1", RouteName: "City Loop", StartPoint: "Main Campus", EndPoint: "City Center", DepartureTime: "17:30", Status: "active"},
		{RouteNumber: "B3", RouteName: "Express", StartPoint: "Main Campus", EndPoint: "Kottawa", DepartureTime: "6:15 PM", Status: "active"},
		{RouteNumber: "A1", RouteName: "Morning", StartPoint: "City Center", EndPoint: "Main Campus", DepartureTime: "06:30", Status: "inactive"},
	}

	tests := []struct {
		name string
		args Args
		want []string
	}{
		{name: "query", args: Args{Query: "kottawa"}, want: []string{"B3"}},
		{name: "status", args: Args{Status: "inactive"}, want: []string{"A1"}},
		{name: "evening window", args: Args{From: "17:00", To: "19:00"}, want: []string{"B1", "B3"}},
		{name: "no filters", args: Args{}, want: []string{"B1", "B3", "A1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBusRoutes(routes, tt.args)
			numbers := make([]string, 0, len(got))
			for _, r := range got {
				numbers = append(numbers, r.RouteNumber)
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}

func TestFilterMenuAndRender(t *testing.T) {
	menu := Menu{
		{Name: "Veggie Burger", Category: "Vegetarian", Price: 380},
		{Name: "Chicken Kottu", Category: "Main"},
	}
	got := FilterMenu(menu, "vegetarian")
	require.Len(t, got, 1)
	assert.Contains(t, got.Render(), "Veggie Burger [Vegetarian] LKR 380.00")
	assert.Equal(t, "No matching menu items were found.", Menu{}.Render())
}
