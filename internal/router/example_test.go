package router

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

func ExampleRouter_GetPing() {
	server, _, _ := setupTestRouter(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_GetFriendsleaderboard() {
	server, db, _ := setupTestRouter(nil, withMockAuth(true))
	defer server.Close()

	ctx := context.Background()
	_, err := db.CreateUser(ctx, &user.User{
		ID:       "65f000000000000000000001",
		Username: "ana",
		Email:    "ana@example.com",
	})
	if err != nil {
		panic(err)
	}
	for _, country := range []string{"France", "France", "Spain"} {
		_, err = db.CreateTrip(ctx, &models.Trip{UserID: "65f000000000000000000001", Country: country})
		if err != nil {
			panic(err)
		}
	}

	resp, err := http.Get(server.URL + "/friends/leaderboard")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Print(string(body))

	// Output:
	// Status Code: 200
	// [{"id":"65f000000000000000000001","username":"ana","email":"ana@example.com","profilePic":"","countriesVisited":2,"isFollowing":false}]
}

func ExampleRouter_PostFriendsfollow() {
	server, db, _ := setupTestRouter(nil, withMockAuth(true))
	defer server.Close()

	ctx := context.Background()
	for _, usr := range []user.User{
		{ID: "65f000000000000000000001", Username: "ana", Email: "ana@example.com"},
		{ID: "65f000000000000000000002", Username: "ben", Email: "ben@example.com"},
	} {
		if _, err := db.CreateUser(ctx, &usr); err != nil {
			panic(err)
		}
	}

	resp, err := http.Post(
		server.URL+"/friends/follow/65f000000000000000000002?user_id=65f000000000000000000001",
		"application/json",
		nil,
	)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Print(string(body))

	// Output:
	// Status Code: 200
	// {"status":"success","message":"Followed","isFollowing":true,"following":["65f000000000000000000002"]}
}
