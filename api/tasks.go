package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Category    string `json:"category"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if isBlank(input.Title) {
		writeError(w, errors.New("Title can not be blank"), http.StatusBadRequest)
		return
	}

	t := task{
		UserID:      getUserFromRequest(r).ID,
		Title:       input.Title,
		Description: input.Description,
		Category:    defaultCategory,
	}
	if input.DueDate != "" {
		due, ok := parseDueDate(input.DueDate)
		if !ok {
			writeError(w, errors.New("Invalid due date"), http.StatusBadRequest)
			return
		}
		t.DueDate = &due
	}
	if input.Category != "" {
		if !isValidCategory(input.Category) {
			writeError(w, errors.New("Invalid Category"), http.StatusBadRequest)
			return
		}
		t.Category = input.Category
	}

	err = app.storage.insertTask(&t)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	tasks, err := app.storage.getTasksByUser(u.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(tasks) == 0 {
		writeJSON(w, http.StatusOK, "No tasks has been created yet")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Category    string `json:"category"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if input.Category != "" && !isValidCategory(input.Category) {
		writeError(w, errors.New("Invalid Category"), http.StatusBadRequest)
		return
	}

	// Only fields carrying a value join the patch; a blank field means the
	// caller did not send it.
	fields := make(map[string]any)
	if input.Title != "" {
		fields["title"] = input.Title
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.DueDate != "" {
		due, ok := parseDueDate(input.DueDate)
		if !ok {
			writeError(w, errors.New("Invalid due date"), http.StatusBadRequest)
			return
		}
		fields["due_date"] = due
	}
	if input.Category != "" {
		fields["category"] = input.Category
	}
	if len(fields) == 0 {
		writeError(w, errors.New("Please provide at least one field to update"), http.StatusBadRequest)
		return
	}

	t, err := app.storage.updateTask(id, fields)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("Task not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := app.storage.getTaskByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("Task not found"), http.StatusNotFound)
		return
	}
	toggled, err := app.storage.setTaskCompleted(id, !t.Completed)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if toggled == nil {
		writeError(w, errors.New("Task not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := app.storage.deleteTask(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !deleted {
		writeError(w, errors.New("Task not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
