package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FullName string `json:"fullname"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if isBlank(input.FullName) || isBlank(input.Username) || isBlank(input.Password) {
		writeError(w, errors.New("Please enter all required fields"), http.StatusBadRequest)
		return
	}

	// Pre-write uniqueness check. Not serialized against concurrent signups;
	// the UNIQUE constraint on username backstops the race.
	existing, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if existing != nil {
		writeError(w, errors.New("Username already taken"), http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	u := &user{
		FullName:     input.FullName,
		Username:     input.Username,
		PasswordHash: hash,
	}
	err = app.storage.insertUser(u)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	err = app.issueSessionCookie(w, u.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if isBlank(input.Username) || isBlank(input.Password) {
		writeError(w, errors.New("Please enter all required fields"), http.StatusBadRequest)
		return
	}

	u, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if u == nil {
		writeError(w, errors.New("User does not exist"), http.StatusBadRequest)
		return
	}
	if !verifyPassword(input.Password, u.PasswordHash) {
		writeError(w, errors.New("Please enter correct password"), http.StatusBadRequest)
		return
	}

	err = app.issueSessionCookie(w, u.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successfully"})
}
