package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ASCEND API",
        "description": "Mentor routing core: matching, question queue, trust scores and feedback.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Questions", "description": "Question intake, matching and answers"},
        {"name": "Queue", "description": "Per-company pending question queue"},
        {"name": "Allocations", "description": "Load-balanced mentor assignment"},
        {"name": "Mentors", "description": "Mentor profiles, recommendations and trust"},
        {"name": "Referrals", "description": "Referral requests to mentors"},
        {"name": "Stats", "description": "Read-only aggregates"}
    ],
    "paths": {
        "/questions": {
            "get": {
                "tags": ["Questions"],
                "summary": "List questions (knowledge base)",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "answered"]},
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Questions"],
                "summary": "Submit a question",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AskQuestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Company not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/questions/{id}": {
            "get": {
                "tags": ["Questions"],
                "summary": "Get question",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/questions/{id}/match": {
            "get": {
                "tags": ["Questions"],
                "summary": "Find the best mentor for a question",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Question not found or no eligible mentor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/questions/{id}/answer": {
            "post": {
                "tags": ["Questions"],
                "summary": "Answer a pending question",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerQuestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already answered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/questions/{id}/feedback": {
            "post": {
                "tags": ["Questions"],
                "summary": "Submit or replace feedback on an answer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Question not answered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/queue/companies/{companyId}/size": {
            "get": {
                "tags": ["Queue"],
                "summary": "Pending questions for a company",
                "parameters": [{"name": "companyId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/queue/dequeue": {
            "post": {
                "tags": ["Queue"],
                "summary": "Take the next question for a mentor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DequeueRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Mentor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/queue/questions/{id}/requeue": {
            "post": {
                "tags": ["Queue"],
                "summary": "Return an unanswered question to the queue",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/queue/mentors/{mentorId}": {
            "get": {
                "tags": ["Queue"],
                "summary": "Peek at the queue a mentor would draw from",
                "parameters": [{"name": "mentorId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/queue/stats": {
            "get": {
                "tags": ["Queue"],
                "summary": "Queue statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/allocations/questions/{id}": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Assign a question to the least loaded mentor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No eligible mentor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocations/distribute": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Assign every pending question",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors": {
            "post": {
                "tags": ["Mentors"],
                "summary": "Register mentor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterMentorRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/recommendations": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Recommend mentors for a student",
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/{id}": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Get mentor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/{id}/responses": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Answers written by a mentor, newest first",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Mentor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentors/{id}/feedback": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Feedback received by a mentor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Mentor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentors/{id}/dashboard": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Mentor dashboard",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Mentor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentors/{id}/availability": {
            "post": {
                "tags": ["Mentors"],
                "summary": "Toggle whether a mentor accepts questions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/{id}/verification": {
            "post": {
                "tags": ["Mentors"],
                "summary": "Verify or revoke a mentor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerificationRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/{id}/trust": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Trust score breakdown",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/mentors/{id}/trust/recompute": {
            "post": {
                "tags": ["Mentors"],
                "summary": "Recompute a mentor's trust score",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/trust/recompute": {
            "post": {
                "tags": ["Mentors"],
                "summary": "Schedule a recompute for every verified mentor",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Job queue unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/referrals": {
            "get": {
                "tags": ["Referrals"],
                "summary": "List referrals",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "mentor_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Referrals"],
                "summary": "Request a referral",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReferralRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/referrals/{id}/respond": {
            "post": {
                "tags": ["Referrals"],
                "summary": "Approve or reject a referral",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RespondReferralRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the addressed mentor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/matching": {
            "get": {"tags": ["Stats"], "summary": "Matching statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/companies": {
            "get": {"tags": ["Stats"], "summary": "Mentor counts per company", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/feedback": {
            "get": {"tags": ["Stats"], "summary": "Feedback outcome statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/queue": {
            "get": {"tags": ["Stats"], "summary": "Queue statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/stats/system": {
            "get": {"tags": ["Stats"], "summary": "Process counters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "AskQuestionRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "company_id": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "category": {"type": "string"},
                "urgency": {"type": "string", "enum": ["Normal", "High"]}
            },
            "required": ["student_id", "company_id", "title", "body"]
        },
        "AnswerQuestionRequest": {
            "type": "object",
            "properties": {
                "mentor_id": {"type": "string"},
                "body": {"type": "string"}
            },
            "required": ["mentor_id", "body"]
        },
        "SubmitFeedbackRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "outcome": {"type": "string", "enum": ["helpful", "got_interview", "got_referral", "not_helpful"]},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "comment": {"type": "string"}
            },
            "required": ["student_id", "outcome"]
        },
        "DequeueRequest": {
            "type": "object",
            "properties": {
                "mentor_id": {"type": "string"},
                "company_id": {"type": "string"}
            },
            "required": ["mentor_id"]
        },
        "RegisterMentorRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "full_name": {"type": "string"},
                "company_id": {"type": "string"},
                "job_title": {"type": "string"}
            },
            "required": ["full_name", "company_id"]
        },
        "AvailabilityRequest": {
            "type": "object",
            "properties": {"accepting": {"type": "boolean"}},
            "required": ["accepting"]
        },
        "VerificationRequest": {
            "type": "object",
            "properties": {"verified": {"type": "boolean"}},
            "required": ["verified"]
        },
        "CreateReferralRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "mentor_id": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["student_id", "mentor_id", "message"]
        },
        "RespondReferralRequest": {
            "type": "object",
            "properties": {
                "mentor_id": {"type": "string"},
                "status": {"type": "string", "enum": ["approved", "rejected"]},
                "message": {"type": "string"}
            },
            "required": ["mentor_id", "status"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
