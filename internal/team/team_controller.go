package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TusharJoshi-11/crease/pkg/responses"
	"github.com/TusharJoshi-11/crease/pkg/validator"
)

// TeamController handles team and player administration requests.
type TeamController struct {
	repo TeamRepository
}

func NewTeamController(repo TeamRepository) *TeamController {
	return &TeamController{repo: repo}
}

// CreateTeamRequest defines the request payload for creating a team.
type CreateTeamRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	ShortName string `json:"short_name" binding:"omitempty,max=8"`
	Logo      string `json:"logo,omitempty"`
}

// AddPlayerRequest defines the request payload for adding a player to a team.
type AddPlayerRequest struct {
	Name         string     `json:"name" binding:"required,min=2,max=100"`
	Role         PlayerRole `json:"role" binding:"omitempty,oneof=batsman bowler all_rounder wicket_keeper"`
	BattingStyle string     `json:"batting_style,omitempty"`
	BowlingStyle string     `json:"bowling_style,omitempty"`
	JerseyNumber int        `json:"jersey_number,omitempty"`
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreateTeam godoc
// @Summary Create a team
// @Tags teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team"
// @Success 201 {object} responses.SuccessResponse
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}

	team := Team{Name: req.Name, ShortName: req.ShortName, Logo: req.Logo}
	if err := tc.repo.CreateTeam(&team); err != nil {
		responses.InternalServerError(c, "Could not create team")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created", team)
}

// GetTeam godoc
// @Summary Get a team with its players
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /teams/{id} [get]
func (tc *TeamController) GetTeam(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	team, err := tc.repo.GetTeamByID(id)
	if err != nil {
		responses.InternalServerError(c, "Could not fetch team")
		return
	}
	if team == nil {
		responses.NotFound(c, "Team not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved", team)
}

// GetTeams godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} responses.SuccessResponse
// @Router /teams [get]
func (tc *TeamController) GetTeams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	teams, total, err := tc.repo.GetTeams(page, pageSize)
	if err != nil {
		responses.InternalServerError(c, "Could not fetch teams")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Teams retrieved", gin.H{"teams": teams, "total": total})
}

// AddPlayer godoc
// @Summary Add a player to a team
// @Tags teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param player body AddPlayerRequest true "Player"
// @Success 201 {object} responses.SuccessResponse
// @Router /teams/{id}/players [post]
func (tc *TeamController) AddPlayer(c *gin.Context) {
	teamID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AddPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}

	team, err := tc.repo.GetTeamByID(teamID)
	if err != nil {
		responses.InternalServerError(c, "Could not fetch team")
		return
	}
	if team == nil {
		responses.NotFound(c, "Team not found")
		return
	}

	role := req.Role
	if role == "" {
		role = RoleBatsman
	}
	player := Player{
		TeamID:       teamID,
		Name:         req.Name,
		Role:         role,
		BattingStyle: req.BattingStyle,
		BowlingStyle: req.BowlingStyle,
		JerseyNumber: req.JerseyNumber,
	}
	if err := tc.repo.AddPlayer(&player); err != nil {
		responses.InternalServerError(c, "Could not add player")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Player added", player)
}

// GetPlayer godoc
// @Summary Get a player
// @Tags teams
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /players/{id} [get]
func (tc *TeamController) GetPlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	player, err := tc.repo.GetPlayerByID(id)
	if err != nil {
		responses.InternalServerError(c, "Could not fetch player")
		return
	}
	if player == nil {
		responses.NotFound(c, "Player not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Player retrieved", player)
}
